package telegram

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	"go.uber.org/zap"

	"github.com/selivandex/market-intel/pkg/logger"
)

// TemplateManager manages all Telegram notification templates
type TemplateManager struct {
	templates *template.Template
}

// NewTemplateManager creates and loads all templates
func NewTemplateManager(templatesDir string) (*TemplateManager, error) {
	if templatesDir == "" {
		templatesDir = "./templates/telegram"
	}

	// Parse all templates in directory
	pattern := filepath.Join(templatesDir, "*.tmpl")
	templates, err := template.ParseGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates from %s: %w", templatesDir, err)
	}

	// Verify all required templates exist
	requiredTemplates := []string{
		"direction_change.tmpl",
		"confidence_change.tmpl",
		"new_conflict.tmpl",
		"regime_transition.tmpl",
		"stale_signal.tmpl",
		"daily_summary.tmpl",
	}

	for _, name := range requiredTemplates {
		if templates.Lookup(name) == nil {
			return nil, fmt.Errorf("required template not found: %s", name)
		}
	}

	logger.Info("telegram templates loaded",
		zap.Int("count", len(templates.Templates())),
		zap.String("directory", templatesDir),
	)

	return &TemplateManager{
		templates: templates,
	}, nil
}

// ExecuteTemplate renders template with data
func (tm *TemplateManager) ExecuteTemplate(name string, data interface{}) (string, error) {
	tmpl := tm.templates.Lookup(name)
	if tmpl == nil {
		return "", fmt.Errorf("template %s not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
