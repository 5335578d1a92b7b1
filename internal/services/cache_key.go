package services

import (
  "crypto/sha256"
  "encoding/hex"
  "encoding/json"
)

// DeriveCacheKey maps a logical generation request to a stable fingerprint:
// SHA-256 over the canonical JSON of {template, params, model}. Map keys
// are serialized sorted (encoding/json marshals map keys in sorted order at
// every level), so semantically identical parameter sets fingerprint
// identically regardless of construction order.
func DeriveCacheKey(promptTemplate string, params map[string]interface{}, model string) string {
  keyData := struct {
    Model    string                 `json:"model"`
    Params   map[string]interface{} `json:"params"`
    Template string                 `json:"template"`
  }{
    Model:    model,
    Params:   params,
    Template: promptTemplate,
  }

  // Marshal of this shape cannot fail for JSON-representable params;
  // non-representable values would be a programming error upstream.
  raw, err := json.Marshal(keyData)
  if err != nil {
    raw = []byte(promptTemplate + "|" + model)
  }

  sum := sha256.Sum256(raw)
  return hex.EncodeToString(sum[:])
}
