package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{
			name: "english",
			text: "The Lok Sabha discussed the agricultural reform bill during the monsoon session of parliament.",
			want: "en",
		},
		{
			name: "hindi",
			text: "लोक सभा ने मानसून सत्र के दौरान कृषि सुधार विधेयक पर विस्तार से चर्चा की और सदस्यों ने अपने विचार रखे।",
			want: "hi",
		},
		{
			name: "too short",
			text: "hello world",
			want: "unknown",
		},
		{
			// 12 characters, 32 bytes. The length gate counts characters.
			name: "too short hindi",
			text: "लोक सभा सत्र",
			want: "unknown",
		},
		{
			name: "empty",
			text: "",
			want: "unknown",
		},
		{
			name: "whitespace only",
			text: "   \n\t   ",
			want: "unknown",
		},
		{
			name: "other language",
			text: "Le parlement a discuté du projet de loi sur la réforme agricole pendant la session de la mousson.",
			want: "unknown",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, detectLanguage(tc.text))
		})
	}
}
