package conversation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ladiossato/k2-inventory/internal/model"
	"github.com/ladiossato/k2-inventory/internal/report"
	"github.com/ladiossato/k2-inventory/internal/telegram"
)

func invalid(reason string, prompt Reply) Reply {
	return Reply{
		Text:   "❌ " + reason + "\n\n" + prompt.Text,
		Markup: prompt.Markup,
	}
}

func button(text, data string) telegram.InlineKeyboardButton {
	return telegram.InlineKeyboardButton{Text: text, CallbackData: data}
}

func promptChooseLocation() Reply {
	return Reply{
		Text: "\U0001F680 <b>INVENTORY ENTRY</b>\n\nWhich location are we counting?\n\n\U0001F4A1 Type /cancel anytime to exit.",
		Markup: &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{button("\U0001F3E2 Avondale", "loc|avondale"), button("\U0001F373 Commissary", "loc|commissary")},
			{button("❌ Cancel", "cancel")},
		}},
	}
}

func promptChooseEntryType(loc model.Location) Reply {
	return Reply{
		Text: fmt.Sprintf("\U0001F4CD <b>%s</b>\n\nWhat kind of entry is this?", loc.Display()),
		Markup: &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{button("\U0001F4DD On-Hand Count", "type|on_hand"), button("\U0001F4E6 Received Delivery", "type|received")},
			{button("◀️ Back", "back"), button("❌ Cancel", "cancel")},
		}},
	}
}

func promptChooseDate() Reply {
	return Reply{
		Text: "\U0001F4C5 Which date is this entry for?",
		Markup: &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{button("Today", "date|today"), button("Yesterday", "date|yesterday"), button("Other…", "date|custom")},
			{button("◀️ Back", "back"), button("❌ Cancel", "cancel")},
		}},
	}
}

func promptCustomDate() Reply {
	return Reply{
		Text: "\U0001F4C5 Type the date as <code>YYYY-MM-DD</code> or <code>MM-DD</code>.",
	}
}

func promptItem(sess *model.Session) Reply {
	item, ok := sess.CurrentItem()
	if !ok {
		return promptNote()
	}
	var prior string
	if qty, counted := sess.Quantities[item.Name]; counted {
		prior = fmt.Sprintf(" (currently %s)", report.FormatUnit(qty, item.Unit))
	}
	return Reply{
		Text: fmt.Sprintf(
			"\U0001F4E6 Item %d/%d: <b>%s</b>%s\n\nHow many %ss do we have? Send a number, or <b>skip</b> / <b>back</b> / <b>done</b>.",
			sess.Cursor+1, len(sess.Items), item.Name, prior, item.Unit,
		),
	}
}

func promptNote() Reply {
	return Reply{
		Text: "\U0001F4AC Any note for this entry? Send text, or <b>skip</b>.",
	}
}

func promptReview(sess *model.Session) Reply {
	var b strings.Builder
	fmt.Fprintf(&b, "\U0001F50E <b>REVIEW</b>\n")
	fmt.Fprintf(&b, "\U0001F4CD %s • %s\n", sess.Location.Display(), sess.EntryType.Display())
	fmt.Fprintf(&b, "\U0001F4C5 %s\n", sess.Date.Format("Mon Jan 2, 2006"))

	if len(sess.Quantities) == 0 {
		b.WriteString("\nNo quantities entered yet.\n")
	} else {
		units := make(map[string]model.UnitType, len(sess.Items))
		for _, item := range sess.Items {
			units[item.Name] = item.Unit
		}
		names := make([]string, 0, len(sess.Quantities))
		for name := range sess.Quantities {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(&b, "\n<b>%d items:</b>\n", len(names))
		for _, name := range names {
			fmt.Fprintf(&b, "• %s: %s\n", name, report.FormatUnit(sess.Quantities[name], units[name]))
		}
	}

	if sess.Note != "" {
		fmt.Fprintf(&b, "\n\U0001F4AC Note: %s\n", sess.Note)
	}
	b.WriteString("\nReady to save?")

	return Reply{Text: b.String(), Markup: reviewKeyboard()}
}

func reviewKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		{button("✅ Submit", "review|submit")},
		{button("◀️ Back", "review|back"), button("❌ Cancel", "review|cancel")},
	}}
}
