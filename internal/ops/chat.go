package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/nutri/internal/errors"
	"github.com/hpungsan/nutri/internal/feedback"
)

// Handle routes one chat message: slash commands to their operation, any
// other text to LogText. The reply is always renderable; err is set when the
// operation failed, and the reply then explains the failure.
//
//	/start /help /status /history /undo /list
//	/add 30g 150kcal 10p 5l 8g      quick add
//	/add nom|kcal|prot|lip|gluc     save a food
//	/search poulet
func (s *Service) Handle(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return feedback.Help(), nil
	}
	if !strings.HasPrefix(text, "/") {
		return reply(s.LogText(ctx, LogTextInput{Text: text}))
	}

	cmd, args, _ := strings.Cut(text, " ")
	args = strings.TrimSpace(args)

	// Telegram-style "/status@botname"
	cmd, _, _ = strings.Cut(strings.ToLower(cmd), "@")

	switch cmd {
	case "/start":
		return feedback.Welcome(s.goals), nil
	case "/help":
		return feedback.Help(), nil
	case "/status":
		return reply(s.Status(ctx))
	case "/history":
		return reply(s.History(ctx))
	case "/undo":
		return reply(s.Undo(ctx))
	case "/list":
		return feedback.FoodList(s.ListFoods(ctx)), nil
	case "/search":
		if args == "" {
			return "Usage: `/search poulet`", errors.NewInvalidRequest("query is required")
		}
		return reply(s.SearchFoods(ctx, SearchFoodsInput{Query: args}))
	case "/add":
		if strings.Contains(args, "|") {
			return reply(s.AddFood(ctx, AddFoodInput{Definition: args}))
		}
		if args == "" {
			return addUsage, errors.NewInvalidRequest("add arguments are required")
		}
		out, err := s.QuickAdd(ctx, QuickAddInput{Text: args})
		if err != nil {
			return "❌ Format non reconnu.\n\n" + addUsage, err
		}
		return out.Message, nil
	}

	return "❓ Commande inconnue: " + cmd + "\n\n" + feedback.Help(), errors.NewInvalidRequest("unknown command " + cmd)
}

const addUsage = "**Ajout rapide:** `/add 30g 150kcal 10p 5l 8g`\n" +
	"**Sauvegarder:** `/add nom|kcal|prot|lip|gluc`"

type messager interface {
	message() string
}

func (o *LogOutput) message() string         { return o.Message }
func (o *UndoOutput) message() string        { return o.Message }
func (o *StatusOutput) message() string      { return o.Message }
func (o *HistoryOutput) message() string     { return o.Message }
func (o *FoodOutput) message() string        { return o.Message }
func (o *SearchFoodsOutput) message() string { return o.Message }

func reply[T messager](out T, err error) (string, error) {
	if err != nil {
		return feedback.Error(err), err
	}
	return out.message(), nil
}
