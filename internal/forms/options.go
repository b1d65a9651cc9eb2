package forms

import (
	"fmt"

	"github.com/floc-crisis-center/platform/internal/menus"
)

// maxMenuOptions bounds how many per-option slot pairs the options form
// declares extractors for.
const maxMenuOptions = 5

// MainMenuOptionsForm collects a title and a detail answer for each
// menu option. How many pairs are required depends on the
// main_menu_options_count answer collected earlier.
type MainMenuOptionsForm struct {
	menus *menus.Service
}

func NewMainMenuOptionsForm(mn *menus.Service) *MainMenuOptionsForm {
	return &MainMenuOptionsForm{menus: mn}
}

func (f *MainMenuOptionsForm) Name() string {
	return "main_menu_options_form"
}

func (f *MainMenuOptionsForm) RequiredSlots(tracker *Tracker) []string {
	count := slotInt(tracker.Slot("main_menu_options_count"))

	slots := make([]string, 0, count*2)
	for o := 1; o <= count; o++ {
		slots = append(slots,
			fmt.Sprintf("main_menu_option_%d", o),
			fmt.Sprintf("main_menu_option_%d_d", o),
		)
	}
	return slots
}

func (f *MainMenuOptionsForm) Extractors() map[string][]SlotExtractor {
	extractors := make(map[string][]SlotExtractor, maxMenuOptions*2)
	for o := 1; o <= maxMenuOptions; o++ {
		extractors[fmt.Sprintf("main_menu_option_%d", o)] = []SlotExtractor{TextExtractor()}
		extractors[fmt.Sprintf("main_menu_option_%d_d", o)] = []SlotExtractor{TextExtractor()}
	}
	return extractors
}

func (f *MainMenuOptionsForm) Submit(tracker *Tracker, result *Result) error {
	botID, err := tracker.BotID()
	if err != nil {
		return err
	}

	log.Info("updating menu options", "bot_id", botID)

	menuDoc, err := f.menus.Get(botID)
	if err != nil {
		return fmt.Errorf("menu for bot %s: %w", botID, err)
	}

	payload := menuDoc.Payload
	count := slotInt(payload["main_menu_options_count"])

	for o := 1; o <= count; o++ {
		title := fmt.Sprintf("main_menu_option_%d", o)
		detail := title + "_d"
		payload[title] = tracker.Slot(title)
		payload[detail] = tracker.Slot(detail)
	}

	if _, err := f.menus.Update(botID, payload); err != nil {
		return fmt.Errorf("update menu for bot %s: %w", botID, err)
	}

	log.Info("menu options updated", "bot_id", botID)
	result.AddTemplateMessage("utter_got_options_message")
	return nil
}

func slotInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
