package sim

import "github.com/samber/oops"

// Error codes attached to content lookup failures.
const (
	CodeUnknownTemplate = "UNKNOWN_TEMPLATE"
	CodeNoTemplates     = "NO_TEMPLATES"
)

func errUnknownTemplate(name string, cause error) error {
	b := oops.Code(CodeUnknownTemplate).With("template", name)
	if cause != nil {
		return b.Wrapf(cause, "unknown template %q", name)
	}
	return b.Errorf("unknown template %q", name)
}

func errNoTemplates(name string) error {
	return oops.Code(CodeNoTemplates).
		With("template", name).
		Errorf("world has no template provider to resolve %q", name)
}
