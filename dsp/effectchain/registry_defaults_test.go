package effectchain

import (
	"encoding/json"
	"testing"

	"github.com/cwbudde/algo-nldsp/internal/testutil"
)

var defaultTypes = []string{
	"copyeq", "eq", "nlbiquad", "nlfeedback",
	"nlallpass", "clipper", "wavefolder", "gru",
	"subharmonic", "exciter", "hysteresis", "gain",
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()

	for _, effectType := range defaultTypes {
		if reg.Lookup(effectType) == nil {
			t.Errorf("DefaultRegistry missing effect type: %s", effectType)
		}
	}

	if len(reg.Types()) != len(defaultTypes) {
		t.Errorf("DefaultRegistry has %d types, want %d", len(reg.Types()), len(defaultTypes))
	}
}

func TestDefaultRuntimesProcessFinite(t *testing.T) {
	t.Parallel()

	for _, effectType := range defaultTypes {
		t.Run(effectType, func(t *testing.T) {
			t.Parallel()

			c := New(testCtx(), DefaultRegistry())

			err := c.LoadGraph(mustGraphJSON(Serial(Node{ID: "fx", Type: effectType})))
			if err != nil {
				t.Fatalf("LoadGraph: %v", err)
			}

			in := testutil.DeterministicNoise(7, 0.5, 4096)
			side := testutil.DeterministicNoise(8, 0.5, 4096)

			for start := 0; start < len(in); start += 256 {
				c.ProcessWithSidechain(in[start:start+256], side[start:start+256])
			}

			testutil.RequireFinite(t, in)

			if err := c.Prepare(testCtx()); err != nil {
				t.Fatalf("Prepare: %v", err)
			}
		})
	}
}

func TestJSONRoundTripThroughRegistry(t *testing.T) {
	t.Parallel()

	raw := `{
		"nodes": [
			{"id": "_input", "type": "_input"},
			{"id": "lp", "type": "nlbiquad", "params": {"shape": "lowpass", "freq": 500, "q": 0.7071, "saturator": "tanh"}},
			{"id": "trim", "type": "gain", "params": {"gainDB": -6}},
			{"id": "_output", "type": "_output"}
		],
		"connections": [
			{"from": "_input", "to": "lp"},
			{"from": "lp", "to": "trim"},
			{"from": "trim", "to": "_output"}
		]
	}`

	var g Graph
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	c := New(testCtx(), DefaultRegistry())
	if err := c.LoadGraph(mustGraphJSON(g)); err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}

	high := testutil.DeterministicSine(8000, testSampleRate, 0.1, 48000)
	for start := 0; start < len(high); start += 512 {
		end := min(start+512, len(high))
		c.Process(high[start:end])
	}

	tail := high[len(high)/2:]
	if rms := testutil.RMS(tail); rms > 0.1*0.7071*0.05 {
		t.Errorf("8 kHz through 500 Hz lowpass: rms %v, expected strong attenuation", rms)
	}
}

func TestDefaultRuntimeRejectsInvalidParams(t *testing.T) {
	t.Parallel()

	tests := []Node{
		{ID: "fx", Type: "eq", Params: map[string]any{"shape": "wobble"}},
		{ID: "fx", Type: "gain", Params: map[string]any{"gainDB": 99.0}},
		{ID: "fx", Type: "gru", Params: map[string]any{"wf": -1.0}},
		{ID: "fx", Type: "exciter", Params: map[string]any{"drive": 50.0}},
		{ID: "fx", Type: "nlallpass", Params: map[string]any{"order": 11.0}},
	}

	for _, node := range tests {
		t.Run(node.Type, func(t *testing.T) {
			t.Parallel()

			c := New(testCtx(), DefaultRegistry())
			if err := c.LoadGraph(mustGraphJSON(Serial(node))); err == nil {
				t.Errorf("expected configure error for %+v", node.Params)
			}
		})
	}
}

func TestCopyEQNodeLearnsFromSidechain(t *testing.T) {
	t.Parallel()

	c := New(testCtx(), DefaultRegistry())

	g := Serial(Node{ID: "m", Type: "copyeq", Params: map[string]any{"learn": true, "continuous": true, "nabla": 1.0}}).
		WithSidechain("m")
	if err := c.LoadGraph(mustGraphJSON(g)); err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}

	rt, ok := c.NodeRuntime("m").(*copyEQRuntime)
	if !ok {
		t.Fatalf("unexpected runtime %T", c.NodeRuntime("m"))
	}

	main := testutil.DeterministicNoise(1, 0.5, 8192)
	side := make([]float64, len(main))

	for i, x := range main {
		side[i] = 0.5 * x
	}

	for start := 0; start < len(main); start += 512 {
		c.ProcessWithSidechain(main[start:start+512], side[start:start+512])
	}

	taps := rt.CopyEQ().Taps()
	if taps[0] == 1 {
		t.Error("taps did not adapt")
	}

	if err := c.Prepare(testCtx()); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	if rt.CopyEQ().Taps()[0] != 1 {
		t.Error("Prepare should restore identity taps")
	}

	if rt.CopyEQ().Mode().String() != "learning" {
		t.Errorf("learn flag should rearm after Prepare, mode %v", rt.CopyEQ().Mode())
	}
}

func TestCopyEQNodeDrive(t *testing.T) {
	t.Parallel()

	render := func(params map[string]any) []float64 {
		c := New(testCtx(), DefaultRegistry())
		if err := c.LoadGraph(mustGraphJSON(Serial(Node{ID: "m", Type: "copyeq", Params: params}))); err != nil {
			t.Fatalf("LoadGraph: %v", err)
		}

		buf := testutil.DeterministicNoise(3, 0.5, 1024)
		c.Process(buf)

		return buf
	}

	plain := render(map[string]any{"saturator": "hard"})
	driven := render(map[string]any{"saturator": "hard", "drive": 24.0})

	if d, _ := testutil.MaxAbsDiff(plain, driven); d == 0 {
		t.Fatal("drive had no effect on the output")
	}
}
