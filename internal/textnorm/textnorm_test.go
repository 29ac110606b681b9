// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"full-width ascii folds", "ＰＲＯＸＹ　Ｓｅｒｖｅｒ", "proxy server"},
		{"half-width katakana widens", "ﾌﾟﾛｷｼ", "プロキシ"},
		{"whitespace collapses", "  a \t b\n\nc  ", "a b c"},
		{"shell separators stripped", `rm -rf /; echo "x" | sh && $(id)`, "rm -rf / echo x sh id"},
		{"backquote and quotes", "`whoami` 'a'", "whoami a"},
		{"control characters", "a\x00b\x1bc", "a b c"},
		{"japanese passes through", "研究室の論文です。", "研究室の論文です。"},
		{"full-width digits", "２０１７年", "2017年"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"ＰＲＯＸＹ　Ｓｅｒｖｅｒ",
		"ﾌﾟﾛｷｼｻｰﾊﾞｰを用いた Web ｱﾌﾟﾘｹｰｼｮﾝ",
		"Dürst 研究室",
		"  mixed　全角 and half  width；ｶﾀｶﾅ  ",
		`"quoted" & piped | text; with $VARS`,
		"①②③ ㈱ ｱｲｳ ABC",
		"​zero‍width",
		"İstanbul ẞtraße",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestMarkSentences(t *testing.T) {
	assert.Equal(t, "一文目. 二文目. end. ", MarkSentences("一文目。二文目．end."))
}

func TestTruncate(t *testing.T) {
	tokens := []string{"a", "b", "c", "d"}
	assert.Equal(t, []string{"a", "b"}, Truncate(tokens, 2))
	assert.Equal(t, tokens, Truncate(tokens, 10))
	assert.Equal(t, tokens, Truncate(tokens, 0))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "研究...", Excerpt("研究室", 2))
	assert.Equal(t, "abc", Excerpt("abc", 3))
	assert.Equal(t, "", Excerpt("abc", 0))
}
