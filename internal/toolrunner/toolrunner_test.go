package toolrunner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplate_RenderSubstitutesPlaceholders(t *testing.T) {
	tmpl := Registry["flac_encode"]
	argv := tmpl.Render("", map[string]string{"input": "in.wav", "output": "out.flac"})
	assert.Equal(t, []string{"flac", "--best", "--replay-gain", "-f", "-o", "out.flac", "in.wav"}, argv)
}

func TestTemplate_RenderOverridesBin(t *testing.T) {
	tmpl := Registry["mediainfo_duration"]
	argv := tmpl.Render("/usr/local/bin/mediainfo", map[string]string{"input": "rec.wav"})
	assert.Equal(t, "/usr/local/bin/mediainfo", argv[0])
	assert.Equal(t, "rec.wav", argv[len(argv)-1])
}

func TestTemplate_RenderLeavesUnmatchedPlaceholderLiteral(t *testing.T) {
	tmpl := Registry["par2_create"]
	argv := tmpl.Render("", map[string]string{"target": "track.flac"})
	assert.Contains(t, argv, "-s{block}")
	assert.Contains(t, argv, "track.flac")
}

func TestTemplate_RenderSubstitutesEmbeddedPlaceholder(t *testing.T) {
	tmpl := Registry["par2_create"]
	argv := tmpl.Render("", map[string]string{
		"block":  "12288",
		"pct":    "5",
		"vols":   "2",
		"target": "track.flac",
	})
	assert.Contains(t, argv, "-s12288")
	assert.Contains(t, argv, "-r5")
	assert.Contains(t, argv, "-n2")
	assert.Contains(t, argv, "track.flac")
}

func TestRun_RejectsUnknownTemplate(t *testing.T) {
	_, err := Run(nil, "not-a-real-template", "", nil)
	assert.Error(t, err)
}
