// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package transform

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/poiesic/poirit/core"
)

// NameSource records how an element's English name was obtained.
type NameSource int

const (
	// NameUnresolved means no English form could be produced; the POI
	// is dropped by the processor.
	NameUnresolved NameSource = iota

	// NameOSMTag means an English name tag supplied the name.
	NameOSMTag

	// NameAlreadyEnglish means the primary name needed no work.
	NameAlreadyEnglish

	// NameTransliterated means the name was transliterated from
	// Georgian or Cyrillic script.
	NameTransliterated
)

// OSM tags that may carry an English name, in preference order.
var englishNameTags = [...]string{"name:en", "int_name", "name_en", "official_name:en"}

// georgianLatin maps Mkhedruli letters to Latin. Georgian script is
// unicameral, so there is no uppercase half.
var georgianLatin = map[rune]string{
	'ა': "a", 'ბ': "b", 'გ': "g", 'დ': "d", 'ე': "e", 'ვ': "v",
	'ზ': "z", 'თ': "t", 'ი': "i", 'კ': "k", 'ლ': "l", 'მ': "m",
	'ნ': "n", 'ო': "o", 'პ': "p", 'ჟ': "zh", 'რ': "r", 'ს': "s",
	'ტ': "t", 'უ': "u", 'ფ': "p", 'ქ': "k", 'ღ': "gh", 'ყ': "q",
	'შ': "sh", 'ჩ': "ch", 'ც': "ts", 'ძ': "dz", 'წ': "ts", 'ჭ': "ch",
	'ხ': "kh", 'ჯ': "j", 'ჰ': "h",
}

// cyrillicLatin maps Russian Cyrillic letters, both cases, to Latin.
// Hard and soft signs vanish.
var cyrillicLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e",
	'ё': "yo", 'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k",
	'л': "l", 'м': "m", 'н': "n", 'о': "o", 'п': "p", 'р': "r",
	'с': "s", 'т': "t", 'у': "u", 'ф': "f", 'х': "kh", 'ц': "ts",
	'ч': "ch", 'ш': "sh", 'щ': "shch", 'ъ': "", 'ы': "y", 'ь': "",
	'э': "e", 'ю': "yu", 'я': "ya",
	'А': "A", 'Б': "B", 'В': "V", 'Г': "G", 'Д': "D", 'Е': "E",
	'Ё': "Yo", 'Ж': "Zh", 'З': "Z", 'И': "I", 'Й': "Y", 'К': "K",
	'Л': "L", 'М': "M", 'Н': "N", 'О': "O", 'П': "P", 'Р': "R",
	'С': "S", 'Т': "T", 'У': "U", 'Ф': "F", 'Х': "Kh", 'Ц': "Ts",
	'Ч': "Ch", 'Ш': "Sh", 'Щ': "Shch", 'Ъ': "", 'Ы': "Y", 'Ь': "",
	'Э': "E", 'Ю': "Yu", 'Я': "Ya",
}

// ResolveName produces the English display name for a POI. Preference
// order: an English name tag from OSM, the primary name when it is
// already English, transliteration for Georgian and Cyrillic names.
// The returned NameSource tells which path won; NameUnresolved means
// the name cannot be anglicized and the record should be dropped.
func ResolveName(name string, tags map[string]string) (string, NameSource) {
	for _, tag := range englishNameTags {
		if v := strings.TrimSpace(tags[tag]); v != "" {
			return v, NameOSMTag
		}
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", NameUnresolved
	}
	if core.IsEnglishText(name) {
		return name, NameAlreadyEnglish
	}
	if latin, ok := Transliterate(name); ok && latin != name {
		return latin, NameTransliterated
	}
	return "", NameUnresolved
}

// Transliterate converts Georgian or Cyrillic text to Latin script.
// Runes outside the tables pass through unchanged, so mixed-script
// names survive. ok is false when the text contains neither script.
func Transliterate(text string) (string, bool) {
	switch {
	case containsRange(text, 0x10A0, 0x10FF): // Georgian block
		return capitalized(mapRunes(text, georgianLatin)), true
	case containsRange(text, 0x0400, 0x04FF): // Cyrillic block
		return mapRunes(text, cyrillicLatin), true
	}
	return "", false
}

func mapRunes(text string, table map[rune]string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if latin, ok := table[r]; ok {
			sb.WriteString(latin)
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func containsRange(text string, lo, hi rune) bool {
	for _, r := range text {
		if r >= lo && r <= hi {
			return true
		}
	}
	return false
}

// capitalized upper-cases the first letter and lower-cases the rest,
// giving unicameral transliterations a display form.
func capitalized(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	r, size := utf8.DecodeRuneInString(lower)
	return string(unicode.ToUpper(r)) + lower[size:]
}
