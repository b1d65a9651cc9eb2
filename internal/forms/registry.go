package forms

import "fmt"

// Registry maps action names to forms so the dialogue driver can
// dispatch a webhook action by name.
type Registry struct {
	forms map[string]Form
}

func NewRegistry() *Registry {
	return &Registry{forms: make(map[string]Form)}
}

func (r *Registry) Register(form Form) error {
	if form.Name() == "" {
		return fmt.Errorf("form name cannot be empty")
	}

	if _, exists := r.forms[form.Name()]; exists {
		return fmt.Errorf("form %q already registered", form.Name())
	}

	r.forms[form.Name()] = form
	log.Info("registered form", "name", form.Name())
	return nil
}

func (r *Registry) Get(name string) (Form, error) {
	form, exists := r.forms[name]
	if !exists {
		return nil, fmt.Errorf("form %q not found", name)
	}
	return form, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.forms))
	for name := range r.forms {
		names = append(names, name)
	}
	return names
}
