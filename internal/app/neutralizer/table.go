package neutralizer

// Replacement maps a case-insensitive pattern to its neutral wording.
type Replacement struct {
	Pattern string
	Neutral string
}

// DefaultTable is the ordered replacement table. Order is part of the
// contract: when two patterns can match at the same position, the earlier
// one wins, so every longer or more specific pattern precedes the shorter
// pattern it overlaps ("High Priest" before "Priest", "non-kosher" before
// "kosher", "zavim" before "zav").
var DefaultTable = []Replacement{
	{`\bShabbat\b`, "rest day"},
	{`\bShabbos\b`, "rest day"},
	{`\bGentile\b`, "outsider"},
	{`\bJewish\b`, "observant"},
	{`\bsynagogue\b`, "community center"},
	{`\bRivka\b`, "Robin"},
	{`\bLeah\b`, "Lena"},
	{`\bYosef\b`, "Alex"},
	{`\bBeit Shammai\b`, "School A"},
	{`\bBeit Hillel\b`, "School B"},
	{`\bRabbi Meir\b`, "Scholar M"},
	{`\bSages\b`, "experts"},
	{`\bTorah\b`, "core law"},
	{`ye'ush`, "despair"},
	{`\bcircumcision\b`, "infant procedure"},
	{`\bcommandment\b`, "obligation"},
	{`Jerusalem-of-Gold`, "ornate"},
	{`\bJerusalem\b`, "designated zone"},
	{`\bIsraelite\b`, "mainstream group"},
	{`\bIsrael\b`, "head office"},
	{`\bDiaspora\b`, "remote region"},
	{`\bHigh[- ]?Priest\b`, "high official"},
	{`\bpriesthood\b`, "senior professional body"},
	{`\bpriests\b`, "senior professionals"},
	{`\bPriest\b`, "senior professional"},
	{`\bkohen\b`, "senior professional"},
	{`\bTemple\b`, "central complex"},
	{`\bLevite\b`, "junior professional"},
	{`\bmamzer\b`, "stigmatized group member"},
	{`\bchallah\b`, "sample"},
	{`am ha-aretz`, "unaccredited vendor"},
	{`\bshechita\b`, "slaughter"},
	{`\bmitzvah\b`, "duty"},
	{`non[- ]?kosher`, "non-approved"},
	{`kosher`, "approved"},
	{`Hekdesh`, "dedicated"},
	{`\baltar\b`, "main platform"},
	{`\bReuven\b`, "Ronan"},
	{`\bMoses\b`, "Morgan"},
	{`\bYevamot\b`, "Levirate Cases"},
	{`\byibbum\b`, "levirate union"},
	{`\bchalitzah\b`, "release ceremony"},
	{`\bKetubot\b`, "Marriage Contracts"},
	{`\bketubah\b`, "marriage contract"},
	{`\bNedarim\b`, "Vows"},
	{`\bNazir\b`, "Abstainer"},
	{`\bnazirite\b`, "abstainer"},
	{`\bSotah\b`, "Suspected Infidelity"},
	{`\bniddah\b`, "cycle separation"},
	{`\bmikveh\b`, "immersion pool"},
	{`\btevul[- ]?yom\b`, "daytime immersant"},
	{`\bzavim\b`, "emission cases"},
	{`\bzav\b`, "emission case"},
	{`Netilat Yadayim`, "hand rinsing"},
	{`\bterumah\b`, "donated portion"},
	{`\bshiva\b`, "mourning period"},
	{`\bhalakhic\b`, "formal"},
}
