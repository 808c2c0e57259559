package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveName_PrefersEnglishTag(t *testing.T) {
	tags := map[string]string{
		"name":     "ნარიყალა",
		"name:en":  "Narikala Fortress",
		"int_name": "Narikala",
	}
	name, source := ResolveName("ნარიყალა", tags)
	assert.Equal(t, "Narikala Fortress", name)
	assert.Equal(t, NameOSMTag, source)
}

func TestResolveName_TagOrder(t *testing.T) {
	cases := []struct {
		tag  string
		want string
	}{
		{"int_name", "Bridge of Peace"},
		{"name_en", "Dry Bridge"},
		{"official_name:en", "Holy Trinity Cathedral"},
	}
	for _, tc := range cases {
		t.Run(tc.tag, func(t *testing.T) {
			name, source := ResolveName("რაღაც", map[string]string{tc.tag: tc.want})
			assert.Equal(t, tc.want, name)
			assert.Equal(t, NameOSMTag, source)
		})
	}
}

func TestResolveName_BlankTagSkipped(t *testing.T) {
	name, source := ResolveName("Fabrika", map[string]string{"name:en": "   "})
	assert.Equal(t, "Fabrika", name)
	assert.Equal(t, NameAlreadyEnglish, source)
}

func TestResolveName_AlreadyEnglish(t *testing.T) {
	name, source := ResolveName("  Cafe Leila  ", nil)
	assert.Equal(t, "Cafe Leila", name)
	assert.Equal(t, NameAlreadyEnglish, source)
}

func TestResolveName_TransliteratesGeorgian(t *testing.T) {
	name, source := ResolveName("ნარიყალა", nil)
	assert.Equal(t, "Nariqala", name)
	assert.Equal(t, NameTransliterated, source)
}

func TestResolveName_TransliteratesCyrillic(t *testing.T) {
	name, source := ResolveName("Красная площадь", nil)
	assert.Equal(t, "Krasnaya ploshchad", name)
	assert.Equal(t, NameTransliterated, source)
}

func TestResolveName_Unresolvable(t *testing.T) {
	name, source := ResolveName("متحف", nil)
	assert.Empty(t, name)
	assert.Equal(t, NameUnresolved, source)
}

func TestResolveName_Empty(t *testing.T) {
	name, source := ResolveName("", nil)
	assert.Empty(t, name)
	assert.Equal(t, NameUnresolved, source)
}

func TestTransliterate_Georgian(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"თბილისი", "Tbilisi"},
		{"ბათუმი", "Batumi"},
		{"მთაწმინდა", "Mtatsminda"},
		{"ჟინვალი", "Zhinvali"},
		{"ღვინო", "Ghvino"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := Transliterate(tc.in)
			assert.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTransliterate_Cyrillic(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Москва", "Moskva"},
		{"Эрмитаж", "Ermitazh"},
		{"щука", "shchuka"},
		{"объект", "obekt"}, // hard sign vanishes
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := Transliterate(tc.in)
			assert.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTransliterate_MixedScript(t *testing.T) {
	got, ok := Transliterate("აფთიაქი PSP")
	assert.True(t, ok)
	assert.Equal(t, "Aptiaki psp", got)
}

func TestTransliterate_LatinPassesThrough(t *testing.T) {
	_, ok := Transliterate("hello")
	assert.False(t, ok)
}
