// internal/scenario/scenario_fuzz_test.go
package scenario

import (
	"testing"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
	"go.uber.org/zap"

	"github.com/xkilldash9x/embody-cli/internal/config"
)

func FuzzParse(f *testing.F) {
	f.Add([]byte(kitchen))
	f.Add([]byte("name: x\nprops:\n  - name: a\n    position: {x: 1}\n"))
	f.Add([]byte("name: [1, 2]\n"))
	f.Fuzz(func(t *testing.T, data []byte) {
		s, err := Parse(data)
		if err != nil {
			return
		}
		if s.Name == "" {
			t.Fatal("a parsed scenario always has a name")
		}
	})
}

// FuzzBuild_Structured builds worlds from generated scenarios that pass
// validation; none of them may fail to build.
func FuzzBuild_Structured(f *testing.F) {
	cfg := config.NewDefaultConfig()
	f.Fuzz(func(t *testing.T, data []byte) {
		fuzzConsumer := fuzz.NewConsumer(data)
		s := &Scenario{}
		if err := fuzzConsumer.GenerateStruct(s); err != nil {
			return
		}
		if s.Validate() != nil {
			return
		}
		if _, err := Build(s, cfg, zap.NewNop(), nil); err != nil {
			t.Fatalf("valid scenario failed to build: %v", err)
		}
	})
}
