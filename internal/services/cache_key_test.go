package services

import (
	"fmt"
	"math/rand"
	"regexp"
	"testing"
)

func TestDeriveCacheKey_Deterministic(t *testing.T) {
	params := map[string]interface{}{"topic": "Thermodynamics", "num_questions": 5}
	a := DeriveCacheKey("quiz {topic}", params, "gemini-2.5-flash")
	b := DeriveCacheKey("quiz {topic}", params, "gemini-2.5-flash")
	if a != b {
		t.Fatalf("same inputs produced different keys: %s vs %s", a, b)
	}
}

func TestDeriveCacheKey_HexSHA256Shape(t *testing.T) {
	key := DeriveCacheKey("t", nil, "m")
	if matched := regexp.MustCompile(`^[0-9a-f]{64}$`).MatchString(key); !matched {
		t.Fatalf("key is not 64 lowercase hex chars: %q", key)
	}
}

func TestDeriveCacheKey_ParamOrderIrrelevant(t *testing.T) {
	a := map[string]interface{}{}
	b := map[string]interface{}{}
	keys := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	for _, k := range keys {
		a[k] = k + "-value"
	}
	for i := len(keys) - 1; i >= 0; i-- {
		b[keys[i]] = keys[i] + "-value"
	}
	if DeriveCacheKey("tmpl", a, "m") != DeriveCacheKey("tmpl", b, "m") {
		t.Fatalf("insertion order changed the fingerprint")
	}
}

func TestDeriveCacheKey_EachInputContributes(t *testing.T) {
	base := DeriveCacheKey("tmpl", map[string]interface{}{"k": "v"}, "model-a")
	if DeriveCacheKey("tmpl2", map[string]interface{}{"k": "v"}, "model-a") == base {
		t.Fatalf("template change did not change the key")
	}
	if DeriveCacheKey("tmpl", map[string]interface{}{"k": "v2"}, "model-a") == base {
		t.Fatalf("param change did not change the key")
	}
	if DeriveCacheKey("tmpl", map[string]interface{}{"k": "v"}, "model-b") == base {
		t.Fatalf("model change did not change the key")
	}
}

func TestDeriveCacheKey_NoCollisionsAcrossDistinctInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	seen := make(map[string]string, 2000)
	for i := 0; i < 2000; i++ {
		params := map[string]interface{}{
			"index":   i,
			"subject": fmt.Sprintf("subject-%d", rng.Intn(50)),
		}
		input := fmt.Sprintf("tmpl-%d", i%7)
		key := DeriveCacheKey(input, params, "gemini-2.5-flash")
		if prior, dup := seen[key]; dup {
			t.Fatalf("collision between %q and %q", prior, fmt.Sprintf("%s/%d", input, i))
		}
		seen[key] = fmt.Sprintf("%s/%d", input, i)
	}
}
