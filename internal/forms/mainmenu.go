package forms

import (
	"fmt"

	"github.com/floc-crisis-center/platform/internal/menus"
)

// MainMenuForm collects the bot's greeting, menu prompt, and option
// count, then saves them as the bot's menu document.
type MainMenuForm struct {
	menus *menus.Service
}

func NewMainMenuForm(mn *menus.Service) *MainMenuForm {
	return &MainMenuForm{menus: mn}
}

func (f *MainMenuForm) Name() string {
	return "main_menu_form"
}

func (f *MainMenuForm) RequiredSlots(*Tracker) []string {
	return []string{
		"welcome_message",
		"main_menu_message",
		"main_menu_options_count",
	}
}

func (f *MainMenuForm) Extractors() map[string][]SlotExtractor {
	return map[string][]SlotExtractor{
		"welcome_message":         {TextExtractor()},
		"main_menu_message":       {TextExtractor()},
		"main_menu_options_count": {NumberExtractor()},
	}
}

func (f *MainMenuForm) Submit(tracker *Tracker, result *Result) error {
	botID, err := tracker.BotID()
	if err != nil {
		return err
	}

	payload := map[string]any{
		"welcome_message":         tracker.Slot("welcome_message"),
		"main_menu_message":       tracker.Slot("main_menu_message"),
		"main_menu_options_count": tracker.Slot("main_menu_options_count"),
	}

	log.Info("saving menu", "bot_id", botID)
	if _, err := f.menus.Upsert(botID, payload); err != nil {
		return fmt.Errorf("save menu for bot %s: %w", botID, err)
	}
	log.Info("menu saved", "bot_id", botID)

	result.AddTemplateMessage("utter_got_it_welcome_message")
	return nil
}
