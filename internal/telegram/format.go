package telegram

import (
	"errors"
	"fmt"
	"strings"

	"chefmate/internal/app"
	"chefmate/internal/clipper"
	"chefmate/internal/metrics"
	"chefmate/internal/quantity"
	"chefmate/internal/recipe"
	"chefmate/internal/shared"
	"chefmate/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `🧑‍🍳 ChefMate

/recipes [course] - list recipes
/list - show the shopping list
/add <n> [servings] - add recipe n to the list
/buy [qty] [unit] <name> - add an item
/done <n> - tick item n on or off
/remove <n> - remove item n
/clear - remove ticked items
/clearall - empty the list

Send a recipe link to import it.`

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func formatItems(items []shopping.Item) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🛒 *Shopping List* (%d to buy)\n\n", shopping.ActiveCount(items)))
	if len(items) == 0 {
		sb.WriteString("_The list is empty_\n")
	}
	for i, it := range items {
		mark := "▫️"
		if it.Completed {
			mark = "✅"
		}
		sb.WriteString(fmt.Sprintf("%d. %s %s %s %s\n", i+1, mark, quantity.Format(it.Quantity), escape(it.Unit), escape(it.Name)))
	}
	return sb.String()
}

func formatRecipes(recipes []recipe.Recipe, course string) string {
	var sb strings.Builder
	sb.WriteString("📖 *Recipes*")
	if c := strings.TrimSpace(course); c != "" {
		sb.WriteString(" - " + escape(c))
	}
	sb.WriteString("\n\n")
	if len(recipes) == 0 {
		sb.WriteString("_No recipes yet_\n")
	}
	for i, r := range recipes {
		sb.WriteString(fmt.Sprintf("%d. *%s* (%s, %d servings)\n", i+1, escape(r.Name), escape(r.Course), r.Servings))
	}
	return sb.String()
}

func formatRecipeSaved(r recipe.Recipe) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ *Recipe Saved!*\n\n*Title:* %s\n*Servings:* %d\n", escape(r.Name), r.Servings))
	for _, ing := range r.Ingredients {
		sb.WriteString(fmt.Sprintf("• %s %s %s\n", quantity.Format(ing.Quantity), escape(ing.Unit), escape(ing.Name)))
	}
	return sb.String()
}

func formatStats(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d actions, %d failed, %d items (avg %.0fms)\n", d.Date, d.Actions, d.Failures, d.Items, d.AvgLatencyMS))
		if d.PromptTokens > 0 || d.CompletionTokens > 0 {
			sb.WriteString(fmt.Sprintf("  🤖 %d prompt / %d completion tokens\n", d.PromptTokens, d.CompletionTokens))
		}
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", health.Uptime))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))
	return sb.String()
}

// errorText turns an action error into the reply shown to the user.
func errorText(err error) string {
	switch {
	case errors.Is(err, app.ErrBusy):
		return "⏳ Still working on your last change, try again in a moment."
	case errors.Is(err, app.ErrRecipeNotFound):
		return "❌ Recipe not found."
	case errors.Is(err, recipe.ErrNoValidIngredients):
		return "❌ That recipe has no ingredients to add."
	case errors.Is(err, shared.ErrInvalidInput):
		return "❌ Please give the item a name."
	case errors.Is(err, clipper.ErrNoRecipe):
		return "❌ I could not find a recipe on that page."
	}
	if msg := shared.UserMessage(err); msg != "" {
		return "❌ " + msg
	}
	return "❌ Something went wrong."
}
