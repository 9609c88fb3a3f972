package fetcher

import "sort"

// Kind is one of the three corpora fetched per tractate.
type Kind string

const (
	KindBavli      Kind = "bavli"
	KindYerushalmi Kind = "yerushalmi"
	KindMishna     Kind = "mishna"
)

// Seder lists the Mishnah tractates of one order.
type Seder struct {
	Name      string
	Tractates []string
}

// Sedarim is the Mishnah catalog by order.
var Sedarim = []Seder{
	{"Zeraim", []string{"Berakhot", "Peah", "Demai", "Kilayim", "Sheviit", "Terumot", "Maasrot", "Maaser Sheni", "Challah", "Orlah", "Bikkurim"}},
	{"Moed", []string{"Shabbat", "Eruvin", "Pesachim", "Shekalim", "Yoma", "Sukkah", "Beitzah", "Rosh Hashanah", "Taanit", "Megillah", "Moed Katan", "Chagigah"}},
	{"Nashim", []string{"Yevamot", "Ketubot", "Nedarim", "Nazir", "Sotah", "Gittin", "Kiddushin"}},
	{"Nezikin", []string{"Bava Kamma", "Bava Metzia", "Bava Batra", "Sanhedrin", "Makkot", "Shevuot", "Eduyot", "Avodah Zarah", "Avot", "Horayot"}},
	{"Kodashim", []string{"Zevachim", "Menachot", "Chullin", "Bekhorot", "Arakhin", "Temurah", "Keritot", "Meilah", "Tamid", "Middot", "Kinnim"}},
	{"Taharot", []string{"Kelim", "Oholot", "Negaim", "Parah", "Taharot", "Mikvaot", "Niddah", "Makhshirin", "Zavim", "Tevul Yom", "Yadayim", "Oktzin"}},
}

var bavli = setOf(
	"Berakhot", "Shabbat", "Eruvin", "Pesachim", "Rosh Hashanah", "Yoma", "Sukkah", "Beitzah",
	"Taanit", "Megillah", "Moed Katan", "Chagigah", "Yevamot", "Ketubot", "Nedarim", "Nazir",
	"Sotah", "Gittin", "Kiddushin", "Bava Kamma", "Bava Metzia", "Bava Batra", "Sanhedrin",
	"Makkot", "Shevuot", "Avodah Zarah", "Horayot", "Zevachim", "Menachot", "Chullin",
	"Bekhorot", "Arakhin", "Temurah", "Keritot", "Meilah", "Niddah", "Tamid",
)

var yerushalmi = setOf(
	"Berakhot", "Peah", "Demai", "Kilayim", "Sheviit", "Terumot", "Maasrot", "Maaser Sheni",
	"Challah", "Orlah", "Bikkurim", "Shabbat", "Eruvin", "Pesachim", "Shekalim", "Yoma",
	"Sukkah", "Beitzah", "Rosh Hashanah", "Taanit", "Megillah", "Chagigah", "Moed Katan",
	"Yevamot", "Ketubot", "Nedarim", "Nazir", "Sotah", "Gittin", "Kiddushin", "Bava Kamma",
	"Bava Metzia", "Bava Batra", "Sanhedrin", "Makkot", "Shevuot", "Avodah Zarah", "Horayot",
	"Niddah",
)

func setOf(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// Tractates returns every tractate name, sorted.
func Tractates() []string {
	var out []string
	for _, s := range Sedarim {
		out = append(out, s.Tractates...)
	}
	sort.Strings(out)
	return out
}

// Target is one text to fetch.
type Target struct {
	Tractate string
	Kind     Kind
	// Ref is the Sefaria text name.
	Ref string
}

// TargetsFor lists the texts available for a tractate: Bavli and Yerushalmi
// where they exist, Mishnah always.
func TargetsFor(tractate string) []Target {
	var out []Target
	if _, ok := bavli[tractate]; ok {
		out = append(out, Target{Tractate: tractate, Kind: KindBavli, Ref: tractate})
	}
	if _, ok := yerushalmi[tractate]; ok {
		out = append(out, Target{Tractate: tractate, Kind: KindYerushalmi, Ref: "Jerusalem Talmud " + tractate})
	}
	out = append(out, Target{Tractate: tractate, Kind: KindMishna, Ref: "Mishnah " + tractate})
	return out
}
