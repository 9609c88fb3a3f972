package cues

// DefaultPatterns are case-insensitive RE2 patterns for culturally
// identifying vocabulary: tractate and order names, rabbinic and ritual
// terms, and the order directories that leak through source_file.
var DefaultPatterns = []string{
	`\bberakhot\b`,
	`\bpeah\b`,
	`\bdemai\b`,
	`\bkilayim\b`,
	`\bsheviit\b`,
	`\bterumot\b`,
	`\bmaaserot\b`,
	`\bmaaser\b`,
	`\bchalah\b`,
	`\borlah\b`,
	`\bbikurim\b`,
	`\bzeraim\b`,
	`R\.\s*Shimon`,
	`R\.\s*Yehudah`,
	`Tanna Kamma`,
	`rabbi`,
	`rabbinic`,
	`\bprozbul\b`,
	`\bbi'ur\b`,
	`\bmamzer\b`,
	`\bIsraelite\b`,
	`\bkosher\b`,
	`\btreif\b`,
	`\bhalakha\b`,
	`\bhalitzah\b`,
	`\bmitzvah\b`,
	`\bchesed\b`,
	`\bsiyum\b`,
	`\bget\b`,
	`\bbeit din\b`,
	`\bkorban\b`,
	`\bchatat\b`,
	`\bchelev\b`,
	`\bshekalim\b`,
	`\bsukkah\b`,
	`\bhachnasat orchim\b`,
	`\bshofar\b`,
	`\bMegillah\b`,
	`\bPurim\b`,
	`\bYom Kippur\b`,
	`\bRosh Hashanah\b`,
	`\bShabbat\b`,
	`\bYom Tov\b`,
	`\bPaschal\b`,
	`\bkashrut\b`,
	`\bTemple\b`,
	`\bJerusalem\b`,
	`\bTorah\b`,
	`\bTalmud\b`,
	`\bTalmudic\b`,
	`\bJewish\b`,
	`\bHebrew\b`,
	`\bIsrael\b`,
	`\bEretz-Yisrael\b`,
	`\bmikveh\b`,
	`\bimpurity\b`,
	`\bpurity\b`,
	`\britual\b.*\b(bath|impurity|purity)\b`,
	`\bHigh Priest\b`,
	`\bpriest\b`,
	`\boffering\b`,
	`\bsacrifice\b`,
	`zeraim/`,
	`moed/`,
	`nashim/`,
	`nezikin/`,
	`kodashim/`,
	`taharot/`,
}
