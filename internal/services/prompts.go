package services

import (
  _ "embed"
  "fmt"
  "strings"
  "sync"

  "gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

var (
  promptOnce    sync.Once
  promptCatalog map[string]string
  promptLoadErr error
)

// PromptTemplate returns the named template from the embedded catalog.
func PromptTemplate(name string) (string, error) {
  promptOnce.Do(func() {
    promptCatalog = make(map[string]string)
    promptLoadErr = yaml.Unmarshal(promptsYAML, &promptCatalog)
  })
  if promptLoadErr != nil {
    return "", fmt.Errorf("load prompt catalog: %w", promptLoadErr)
  }
  tmpl, ok := promptCatalog[name]
  if !ok {
    return "", fmt.Errorf("unknown prompt template %q", name)
  }
  return tmpl, nil
}

// RenderPrompt substitutes {name} placeholders with the given parameters.
// Unreferenced parameters are harmless; unmatched placeholders are left in
// place so a bad call site is visible in the generated prompt.
func RenderPrompt(template string, params map[string]interface{}) string {
  rendered := template
  for key, value := range params {
    rendered = strings.ReplaceAll(rendered, "{"+key+"}", fmt.Sprint(value))
  }
  return rendered
}
