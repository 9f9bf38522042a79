package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tidepool/internal/behavior"
)

var (
	flagTemplateMatch string
	flagBehaviors     bool
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List entity templates",
	Long: `Shows the entity templates levels can place: the built-in catalog merged
with the user catalog from the templates path.

Examples:
  tidepool templates
  tidepool templates --match 'b*'
  tidepool templates --behaviors`,
	Run: runTemplates,
}

func init() {
	templatesCmd.Flags().StringVar(&flagTemplateMatch, "match", "", "Glob pattern on template names")
	templatesCmd.Flags().BoolVar(&flagBehaviors, "behaviors", false, "Also list the behaviors tags and state switch on")
}

func runTemplates(cmd *cobra.Command, args []string) {
	d, err := setup()
	if err != nil {
		fail("%v", err)
	}

	templates, err := d.catalog.Match(flagTemplateMatch)
	if err != nil {
		fail("%v", err)
	}
	if len(templates) == 0 {
		fmt.Println("No templates match.")
		return
	}

	maxName := 4 // "Name" header
	for _, t := range templates {
		maxName = max(maxName, len(t.Name))
	}

	fmt.Printf("  %-*s  %-5s  %s\n", maxName, "Name", "Glyph", "Tags")
	fmt.Printf("  %-*s  %-5s  %s\n", maxName, "----", "-----", "----")
	for _, t := range templates {
		glyph := " "
		if t.Glyph != 0 {
			glyph = string(t.Glyph)
		}
		fmt.Printf("  %-*s  %-5s  %s\n", maxName, t.Name, glyph, strings.Join(t.Tags, " "))
	}

	if !flagBehaviors {
		return
	}
	fmt.Println()
	fmt.Println("Behaviors:")
	for _, b := range behavior.List() {
		fmt.Printf("  %-*s  %s\n", maxName, b.Name, b.Title)
	}
}
