package assistant_test

import (
	"reflect"
	"strings"
	"testing"

	"docchat/src/core/assistant"
)

func TestSplitWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want []string
	}{
		{
			name: "empty input",
			text: "",
			size: 100,
			want: nil,
		},
		{
			name: "whitespace only",
			text: "  \n\t  ",
			size: 100,
			want: nil,
		},
		{
			name: "nine words fit one chunk",
			text: "The quick brown fox jumps over the lazy dog",
			size: 100,
			want: []string{"The quick brown fox jumps over the lazy dog"},
		},
		{
			name: "exact multiple of size",
			text: "a b c d e f",
			size: 3,
			want: []string{"a b c", "d e f"},
		},
		{
			name: "remainder in final chunk",
			text: "a b c d e f g",
			size: 3,
			want: []string{"a b c", "d e f", "g"},
		},
		{
			name: "size one",
			text: "x y z",
			size: 1,
			want: []string{"x", "y", "z"},
		},
		{
			name: "mixed whitespace normalized",
			text: "one\ttwo\n\nthree  four",
			size: 2,
			want: []string{"one two", "three four"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := assistant.SplitWords(tt.text, tt.size)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitWords(%q, %d) = %v, want %v", tt.text, tt.size, got, tt.want)
			}
		})
	}
}

func TestSplitWordsReassembly(t *testing.T) {
	inputs := []string{
		"The quick brown fox jumps over the lazy dog",
		"one",
		"a b c d e f g h i j k l m n o p q r s t u v w x y z",
		"line one\nline two\nline three",
	}
	sizes := []int{1, 2, 3, 5, 100}

	for _, text := range inputs {
		for _, size := range sizes {
			chunks := assistant.SplitWords(text, size)

			rejoined := strings.Fields(strings.Join(chunks, " "))
			original := strings.Fields(text)
			if !reflect.DeepEqual(rejoined, original) {
				t.Errorf("SplitWords(%q, %d) lost words: got %v, want %v", text, size, rejoined, original)
			}

			for i, chunk := range chunks {
				words := len(strings.Fields(chunk))
				if i < len(chunks)-1 && words != size {
					t.Errorf("SplitWords(%q, %d) chunk %d has %d words, want %d", text, size, i, words, size)
				}
				if i == len(chunks)-1 && (words < 1 || words > size) {
					t.Errorf("SplitWords(%q, %d) final chunk has %d words, want 1..%d", text, size, words, size)
				}
			}
		}
	}
}

func TestWordChunkerDefaultsSize(t *testing.T) {
	chunks, err := assistant.WordChunker{}.Split("hello world")
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) != 1 || chunks[0] != "hello world" {
		t.Errorf("Split() = %v, want single chunk", chunks)
	}
}
