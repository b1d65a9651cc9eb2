package packager

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Menu payload keys and the descriptor keys derived from them.
const (
	welcomeMessageKey   = "welcome_message"
	mainMenuMessageKey  = "main_menu_message"
	optionsCountKey     = "main_menu_options_count"
	optionPrefix        = "main_menu_option_"
	detailSuffix        = "_d"
	utterPrefix         = "utter_"
	maxOptionsSlot      = "maxOptions"
	responsesSectionKey = "responses"
	slotsSectionKey     = "slots"
)

// validateMenu checks the menu payload covers everything the merge step
// will read, so a half-filled menu never produces an archive.
func validateMenu(menu map[string]any) error {
	for _, key := range []string{welcomeMessageKey, mainMenuMessageKey} {
		if _, ok := menu[key].(string); !ok {
			return fmt.Errorf("menu missing %s", key)
		}
	}

	count, ok := asInt(menu[optionsCountKey])
	if !ok || count < 0 {
		return fmt.Errorf("menu missing a numeric %s", optionsCountKey)
	}

	for o := 1; o <= count; o++ {
		title := fmt.Sprintf("%s%d", optionPrefix, o)
		detail := title + detailSuffix
		if _, ok := menu[title].(string); !ok {
			return fmt.Errorf("menu missing %s", title)
		}
		if _, ok := menu[detail].(string); !ok {
			return fmt.Errorf("menu missing %s", detail)
		}
	}

	return nil
}

// mergeDescriptor rewrites the descriptor file in place, adding or
// overwriting the response and slot keys derived from the menu. Keys it
// does not own are left untouched.
func mergeDescriptor(path string, menu map[string]any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	doc := map[string]any{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", DescriptorFile, err)
	}

	responses, ok := doc[responsesSectionKey].(map[string]any)
	if !ok {
		responses = map[string]any{}
		doc[responsesSectionKey] = responses
	}

	responses[utterPrefix+welcomeMessageKey] = responseVariants(menu[welcomeMessageKey])
	responses[utterPrefix+mainMenuMessageKey] = responseVariants(menu[mainMenuMessageKey])

	count, _ := asInt(menu[optionsCountKey])
	for o := 1; o <= count; o++ {
		title := fmt.Sprintf("%s%d", optionPrefix, o)
		detail := title + detailSuffix
		responses[utterPrefix+title] = responseVariants(menu[title])
		responses[utterPrefix+detail] = responseVariants(menu[detail])
	}

	slots, ok := doc[slotsSectionKey].(map[string]any)
	if !ok {
		slots = map[string]any{}
		doc[slotsSectionKey] = slots
	}
	slots[maxOptionsSlot] = map[string]any{
		"type":          "text",
		"initial_value": count,
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", DescriptorFile, err)
	}

	return os.WriteFile(path, out, 0644)
}

// responseVariants wraps a message in the descriptor's single-variant
// response form: [{text: ...}].
func responseVariants(text any) []any {
	return []any{map[string]any{"text": text}}
}

// asInt accepts the numeric shapes a JSON or YAML round trip can
// produce for the options count.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
