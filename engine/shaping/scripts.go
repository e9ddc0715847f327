package shaping

import (
	"strings"

	"github.com/npillmayer/fontdiff/core/unidata"
	"golang.org/x/text/language"
)

// otScripts maps OpenType script tags to ISO 15924 codes where the two
// differ in more than letter case.
var otScripts = map[string]string{
	"dev2": "Deva", // Devanagari v.2
	"bng2": "Beng", // Bengali v.2
	"gjr2": "Gujr", // Gujarati v.2
	"gur2": "Guru", // Gurmukhi v.2
	"knd2": "Knda", // Kannada v.2
	"mlm2": "Mlym", // Malayalam v.2
	"ory2": "Orya", // Odia v.2
	"tml2": "Taml", // Tamil v.2
	"tel2": "Telu", // Telugu v.2
	"mym2": "Mymr", // Myanmar v.2
	"beng": "Beng",
	"deva": "Deva",
	"gujr": "Gujr",
	"guru": "Guru",
	"knda": "Knda",
	"mlym": "Mlym",
	"orya": "Orya",
	"taml": "Taml",
	"telu": "Telu",
	"mymr": "Mymr",
	"kana": "Kana", // Hiragana and Katakana
	"hang": "Hang",
	"jamo": "Hang",
	"hani": "Hani",
	"nko":  "Nkoo",
	"lao":  "Laoo",
	"yi":   "Yiii",
	"vai":  "Vaii",
	"math": "Zmth",
	"dflt": "",
}

// otLanguages maps OpenType language system tags to BCP 47 tags for
// shaping, covering the languages fontdiff is likely to meet in word lists.
var otLanguages = map[string]string{
	"ARA": "ar",
	"BGR": "bg",
	"CAT": "ca",
	"CSY": "cs",
	"DEU": "de",
	"ELL": "el",
	"ENG": "en",
	"ESP": "es",
	"FAR": "fa",
	"FRA": "fr",
	"HIN": "hi",
	"HRV": "hr",
	"ITA": "it",
	"JAN": "ja",
	"KOR": "ko",
	"MAR": "mr",
	"MKD": "mk",
	"MOL": "mo",
	"NEP": "ne",
	"NLD": "nl",
	"PLK": "pl",
	"PTG": "pt",
	"ROM": "ro",
	"RUS": "ru",
	"SAN": "sa",
	"SRB": "sr",
	"TRK": "tr",
	"UKR": "uk",
	"URD": "ur",
	"ZHS": "zh-Hans",
	"ZHT": "zh-Hant",
}

// ScriptCode returns the ISO 15924 code for a script given as OpenType
// script tag or ISO code. If tag is empty, "dflt" or unknown, the script
// is guessed from the first character of text belonging to a real writing
// system. ScriptCode returns "" if no script can be determined.
func ScriptCode(tag string, text string) string {
	tag = strings.TrimSpace(tag)
	lower := strings.ToLower(tag)
	if iso, ok := otScripts[lower]; ok && iso != "" {
		return iso
	}
	if len(tag) == 4 && lower != "dflt" {
		iso := strings.ToUpper(lower[:1]) + lower[1:]
		if _, err := language.ParseScript(iso); err == nil {
			return iso
		}
		tracer().Debugf("unknown script tag %q", tag)
	}
	return unidata.DominantScript(text)
}

// htmlLangs maps OpenType script and language systems to BCP 47 tags.
// Only pairs listed here get a lang attribute.
var htmlLangs = map[[2]string]string{
	{"", ""}:         "en",
	{"latn", "dflt"}: "en",
	{"arab", "ARA"}:  "ar",
	{"dev2", "HIN"}:  "hi",
	{"dev2", "MAR"}:  "mr",
	{"dev2", "NEP"}:  "ne",
	{"latn", "MOL"}:  "mo",
	{"cyrl", "SRB"}:  "sr",
}

// HTMLLang returns a BCP 47 language tag for an OpenType script and language
// system, suitable for the lang attribute of HTML elements. Returns "" if
// the pair is not known.
func HTMLLang(script, lang string) string {
	return htmlLangs[[2]string{strings.TrimSpace(script), strings.TrimSpace(lang)}]
}
