package app

import (
	"fmt"

	coreconfig "github.com/Growstale/RequestHandlerWebServer/core/config"
	"github.com/Growstale/RequestHandlerWebServer/core/telegram"
	"github.com/Growstale/RequestHandlerWebServer/core/telegram/commands"
	"github.com/Growstale/RequestHandlerWebServer/core/telegram/router"
	"github.com/Growstale/RequestHandlerWebServer/internal/backend"
	"github.com/Growstale/RequestHandlerWebServer/internal/flow"

	tele "gopkg.in/telebot.v4"
)

// BuildRegistry wires the bot commands and callback handlers around a Flow.
func BuildRegistry(fl *flow.Flow) *telegram.Registry {
	reg := telegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     startHandler,
		Description: "Приветствие и список команд",
	})
	reg.RegisterCommand("/chatid", commands.Command{
		Handler:     chatIDHandler,
		Description: "Показать идентификатор чата",
		Hidden:      true,
	})
	reg.RegisterCommand("/newrequest", commands.Command{
		Handler:     fl.Start,
		Description: "Создать новую заявку",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     fl.Cancel,
		Description: "Отменить создание заявки",
	})
	reg.RegisterCommand("/health", commands.Command{
		Handler:     fl.HealthHandler,
		Description: "Проверить связь с сервером",
	})

	for _, prefix := range []string{
		flow.PrefixShop,
		flow.PrefixContractor,
		flow.PrefixWorkCategory,
		flow.PrefixUrgency,
	} {
		_ = reg.RegisterCallback(prefix, fl.CallbackHandler(prefix))
	}
	_ = reg.RegisterCallback(flow.Noop, fl.NoopHandler)

	return reg
}

// BuildRunOptions assembles everything RunTelegram needs from configuration.
func BuildRunOptions(cfg *coreconfig.Config) telegram.RunOptions {
	api := backend.NewClient(cfg.Backend)
	fl := flow.New(api)
	reg := BuildRegistry(fl)

	routes := router.CommandRoutes(reg)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(fl.Manager(), reg, router.TextOptions{})...)

	return telegram.RunOptions{
		Config:      cfg,
		Registry:    reg,
		Middlewares: telegram.DefaultMiddlewares(cfg, nil),
		Routes:      routes,
	}
}

func startHandler(c tele.Context) error {
	name := "пользователь"
	if s := c.Sender(); s != nil && s.FirstName != "" {
		name = s.FirstName
	}
	return c.Send(flow.GreetingMessage(name))
}

func chatIDHandler(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}
	return c.Send(fmt.Sprintf("ID этого чата: `%d`", chat.ID), tele.ModeMarkdown)
}
