// ABOUTME: Schema definition for Daichi Laboratory's Synth1 software synthesizer
// ABOUTME: Parameter table follows Zoran Nikolic's unofficial Synth1 manual
package synth1

import (
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/thomashuss/patch1/internal/schema"
)

const (
	// SynthName identifies the schema.
	SynthName = "Synth1"

	// DefaultVersion is the patch format version assumed when a file does
	// not declare one.
	DefaultVersion = 113

	// pluginIDWin32 is the unique ID of the win32 Synth1 VST release,
	// which (natively or through a compat layer) covers every platform
	// except macOS.
	pluginIDWin32  = 1395742323
	pluginIDDarwin = 1450726194
)

var filePattern = regexp.MustCompile(`^[0-9]{3}\.[sS][yY]1$`)

var paramNames = []string{
	"osc1 shape", "osc2 shape", "osc2 pitch", "osc2 fine tune",
	"osc2 kbd track", "osc mix", "osc2 sync", "osc2 ring modulation",
	"osc pulse width", "osc key shift", "osc mod env on/off", "osc mod env amount",
	"osc mod env attack", "osc mod env decay", "filter type", "filter attack",
	"filter decay", "filter sustain", "filter release", "filter freq",
	"filter resonance", "filter amount", "filter kbd track", "filter saturation",
	"filter velocity switch", "amp attack", "amp decay", "amp sustain",
	"amp release", "amp gain", "amp velocity sens", "arpeggiator type",
	"arpeggiator oct range", "arpeggiator beat", "arpeggiator gate", "delay time",
	"delay feedback", "delay dry/wet", "play mode type", "portament time",
	"pitch bend range", "lfo1 destination", "lfo1 type", "lfo1 speed",
	"lfo1 depth", "osc1 FM", "lfo2 destination", "lfo2 type",
	"lfo2 speed", "lfo2 depth", "midi ctrl sens1", "midi ctrl sens2",
	"chorus delay time", "chorus depth", "chorus rate", "chorus feedback",
	"chorus level", "lfo1 on/off", "lfo2 on/off", "arpeggiator on/off",
	"equalizer tone", "equalizer freq", "equalizer level", "equalizer Q",
	"chorus type", "delay on/off", "chorus on/off", "lfo1 tempo sync",
	"lfo1 key sync", "lfo2 tempo sync", "lfo2 key sync", "osc mod dest",
	"osc1,2 fine tune", "unison mode", "portament auto mode", "unison detune",
	"osc1 detune", "effect on/off", "effect type", "effect control1",
	"effect control2", "effect level/mix", "delay type", "delay time spread",
	"unison pan spread", "unison pitch", "midi ctrl src1", "midi ctrl assign1",
	"midi ctrl src2", "midi ctrl assign2", "pan", "osc phase shift",
	"unison phase shift", "unison voice num", "polyphony", "osc1 sub gain",
	"osc1 sub shape", "osc1 sub octave", "delay tone",
}

var paramDefaults = []int{
	2, 1, 64, 81, 1, 64, 0, 0, 64, 0, 0, 64, 0,
	0, 1, 0, 64, 32, 64, 81, 14, 128, 64, 0, 1, 64,
	64, 107, 64, 107, 64, 1, 0, 11, 64, 8, 40, 20, 0,
	0, 12, 2, 1, 64, 0, 0, 5, 1, 64, 64, 74, 74,
	64, 64, 50, 64, 40, 1, 1, 0, 64, 64, 64, 64, 2,
	1, 1, 0, 0, 0, 0, 0, 64, 0, 0, 22, 0, 0,
	0, 64, 64, 64, 0, 66, 64, 24, 45057, 44, 45057, 43, 64,
	0, 0, 2, 16, 0, 1, 1, 64,
}

// paramMax holds the declared maximum of each parameter; 0 is the assumed
// minimum, though it isn't always in practice. Where a nonzero minimum can't
// be ignored, floatCorrections compensates on the float export path.
var paramMax = []int{
	4, 3, 127, 127, 1, 127, 1, 1, 127, 48, 1, 127, 127,
	127, 3, 127, 127, 127, 127, 127, 127, 127, 127, 127, 1, 127,
	127, 127, 127, 127, 127, 3, 3, 18, 127, 19, 127, 127, 2,
	127, 24, 6, 5, 127, 127, 127, 6, 5, 127, 127, 127, 127,
	127, 127, 127, 127, 127, 1, 1, 1, 127, 127, 127, 127, 3,
	1, 1, 1, 1, 1, 1, 2, 127, 1, 1, 127, 127, 1,
	9, 127, 127, 127, 2, 127, 127, 48, 65536, 99, 65536, 99, 127,
	127, 127, 6, 31, 127, 3, 1, 127,
}

var floatCorrections = map[int]int{
	1: -1, 9: 24, 31: -1, 41: -1, 46: -1, 64: -1, 87: 1, 89: 1, 93: -2, 94: -1,
}

var colorValues = []string{"red", "blue", "green", "yellow", "magenta", "cyan", "default"}

// New returns the Synth1 schema definition.
func New() *schema.Definition {
	verValues := make([]string, 0, DefaultVersion-100+1)
	for v := 100; v <= DefaultVersion; v++ {
		verValues = append(verValues, strconv.Itoa(v))
	}

	pluginID := int32(pluginIDWin32)
	if runtime.GOOS == "darwin" {
		pluginID = pluginIDDarwin
	}

	return &schema.Definition{
		SynthName:   SynthName,
		PluginID:    pluginID,
		FilePattern: filePattern,
		FileBase:    "001",
		FileExt:     "sy1",
		MetaFields:  []string{"color", "ver"},
		MetaDefaults: map[string]string{
			"color": "default",
			"ver":   strconv.Itoa(DefaultVersion),
		},
		MetaValues: map[string][]string{
			"color": colorValues,
			"ver":   verValues,
		},
		ParamNames:    paramNames,
		ParamDefaults: paramDefaults,
		ParamMax:      paramMax,
		FileLayout:    "{name}\ncolor={color}\nver={ver}\n{params}",
		ParamLayout:   "{index},{value}",
		ParamDelim:    "\n",
		Repair:        repair,
		MakeChunk: func(params []int, meta map[string]string) ([]byte, error) {
			return MakeChunk(params, metaVersion(meta))
		},
		FloatCorrections: floatCorrections,
	}
}

// repair corrects a patch file missing its color or ver lines, a common
// defect in community banks. Files too short to be a patch are rejected.
func repair(text string) (string, error) {
	lines := strings.Split(text, "\n")
	if len(lines) < 4 {
		return "", schema.ErrNotAPatch
	}

	if color := strings.ToLower(lines[1]); strings.HasPrefix(color, "color") {
		lines[1] = color
	} else {
		lines = append(lines[:1], append([]string{"color=default"}, lines[1:]...)...)
	}

	if ver := strings.ToLower(lines[2]); strings.HasPrefix(ver, "ver") {
		lines[2] = ver
	} else {
		lines = append(lines[:2], append([]string{fmt.Sprintf("ver=%d", DefaultVersion)}, lines[2:]...)...)
	}

	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n"), nil
}

func metaVersion(meta map[string]string) int {
	if v, err := strconv.Atoi(meta["ver"]); err == nil {
		return v
	}
	return DefaultVersion
}
