// Package scripture recognizes Bible citations in doctrine content. It maps
// book spellings to canonical codes, parses the compact locators carried by
// export anchors, scans free text for unmarked citations, and emits the
// canonical link markup consumed by the rest of the application.
package scripture

// Book describes one canonical Bible book. Numbered books (1 Samuel,
// 2 Corinthians, 3 John ...) carry an Ordinal and a Stem so that every ordinal
// spelling ("1 Cor", "I Cor.", "First Corinthians", "1Co") can be derived.
type Book struct {
	Code    string   // USFM three-character code, e.g. "1CO"
	Name    string   // display name, e.g. "1 Corinthians"
	Ordinal int      // 1..3 for numbered books, 0 otherwise
	Stem    string   // name without the ordinal, e.g. "Corinthians"
	Abbrevs []string // abbreviations without ordinal and without trailing period
}

// Books lists the 66 books of the Protestant canon in canonical order.
var Books = []Book{
	{Code: "GEN", Name: "Genesis", Abbrevs: []string{"Gen", "Ge", "Gn"}},
	{Code: "EXO", Name: "Exodus", Abbrevs: []string{"Exod", "Exo", "Ex"}},
	{Code: "LEV", Name: "Leviticus", Abbrevs: []string{"Lev", "Le", "Lv"}},
	{Code: "NUM", Name: "Numbers", Abbrevs: []string{"Num", "Nu", "Nm", "Nb"}},
	{Code: "DEU", Name: "Deuteronomy", Abbrevs: []string{"Deut", "Deu", "Dt"}},
	{Code: "JOS", Name: "Joshua", Abbrevs: []string{"Josh", "Jos", "Jsh"}},
	{Code: "JDG", Name: "Judges", Abbrevs: []string{"Judg", "Jdg", "Jg", "Jdgs"}},
	{Code: "RUT", Name: "Ruth", Abbrevs: []string{"Rth", "Ru"}},
	{Code: "1SA", Name: "1 Samuel", Ordinal: 1, Stem: "Samuel", Abbrevs: []string{"Sam", "Sa", "Sm"}},
	{Code: "2SA", Name: "2 Samuel", Ordinal: 2, Stem: "Samuel", Abbrevs: []string{"Sam", "Sa", "Sm"}},
	{Code: "1KI", Name: "1 Kings", Ordinal: 1, Stem: "Kings", Abbrevs: []string{"Kgs", "Ki", "Kin"}},
	{Code: "2KI", Name: "2 Kings", Ordinal: 2, Stem: "Kings", Abbrevs: []string{"Kgs", "Ki", "Kin"}},
	{Code: "1CH", Name: "1 Chronicles", Ordinal: 1, Stem: "Chronicles", Abbrevs: []string{"Chron", "Chr", "Ch"}},
	{Code: "2CH", Name: "2 Chronicles", Ordinal: 2, Stem: "Chronicles", Abbrevs: []string{"Chron", "Chr", "Ch"}},
	{Code: "EZR", Name: "Ezra", Abbrevs: []string{"Ezr", "Ez"}},
	{Code: "NEH", Name: "Nehemiah", Abbrevs: []string{"Neh", "Ne"}},
	{Code: "EST", Name: "Esther", Abbrevs: []string{"Esth", "Est", "Es"}},
	{Code: "JOB", Name: "Job", Abbrevs: []string{"Jb"}},
	{Code: "PSA", Name: "Psalms", Abbrevs: []string{"Psalm", "Pss", "Psa", "Ps"}},
	{Code: "PRO", Name: "Proverbs", Abbrevs: []string{"Prov", "Pro", "Prv", "Pr"}},
	{Code: "ECC", Name: "Ecclesiastes", Abbrevs: []string{"Eccles", "Eccl", "Ecc", "Ec", "Qoh"}},
	{Code: "SNG", Name: "Song of Solomon", Abbrevs: []string{"Song of Songs", "Song", "Sng", "SS", "So"}},
	{Code: "ISA", Name: "Isaiah", Abbrevs: []string{"Isa", "Is"}},
	{Code: "JER", Name: "Jeremiah", Abbrevs: []string{"Jer", "Je", "Jr"}},
	{Code: "LAM", Name: "Lamentations", Abbrevs: []string{"Lam", "La"}},
	{Code: "EZK", Name: "Ezekiel", Abbrevs: []string{"Ezek", "Eze", "Ezk"}},
	{Code: "DAN", Name: "Daniel", Abbrevs: []string{"Dan", "Da", "Dn"}},
	{Code: "HOS", Name: "Hosea", Abbrevs: []string{"Hos", "Ho"}},
	{Code: "JOL", Name: "Joel", Abbrevs: []string{"Joe", "Jl"}},
	{Code: "AMO", Name: "Amos", Abbrevs: []string{"Amo", "Am"}},
	{Code: "OBA", Name: "Obadiah", Abbrevs: []string{"Obad", "Oba", "Ob"}},
	{Code: "JON", Name: "Jonah", Abbrevs: []string{"Jnh", "Jon"}},
	{Code: "MIC", Name: "Micah", Abbrevs: []string{"Mic", "Mc"}},
	{Code: "NAM", Name: "Nahum", Abbrevs: []string{"Nah", "Na"}},
	{Code: "HAB", Name: "Habakkuk", Abbrevs: []string{"Hab", "Hb"}},
	{Code: "ZEP", Name: "Zephaniah", Abbrevs: []string{"Zeph", "Zep", "Zp"}},
	{Code: "HAG", Name: "Haggai", Abbrevs: []string{"Hag", "Hg"}},
	{Code: "ZEC", Name: "Zechariah", Abbrevs: []string{"Zech", "Zec", "Zc"}},
	{Code: "MAL", Name: "Malachi", Abbrevs: []string{"Mal", "Ml"}},
	{Code: "MAT", Name: "Matthew", Abbrevs: []string{"Matt", "Mat", "Mt"}},
	{Code: "MRK", Name: "Mark", Abbrevs: []string{"Mrk", "Mar", "Mk"}},
	{Code: "LUK", Name: "Luke", Abbrevs: []string{"Luk", "Lk"}},
	{Code: "JHN", Name: "John", Abbrevs: []string{"Jhn", "Jn"}},
	{Code: "ACT", Name: "Acts", Abbrevs: []string{"Act", "Ac"}},
	{Code: "ROM", Name: "Romans", Abbrevs: []string{"Rom", "Ro", "Rm"}},
	{Code: "1CO", Name: "1 Corinthians", Ordinal: 1, Stem: "Corinthians", Abbrevs: []string{"Cor", "Co"}},
	{Code: "2CO", Name: "2 Corinthians", Ordinal: 2, Stem: "Corinthians", Abbrevs: []string{"Cor", "Co"}},
	{Code: "GAL", Name: "Galatians", Abbrevs: []string{"Gal", "Ga"}},
	{Code: "EPH", Name: "Ephesians", Abbrevs: []string{"Ephes", "Eph"}},
	{Code: "PHP", Name: "Philippians", Abbrevs: []string{"Phil", "Php", "Pp"}},
	{Code: "COL", Name: "Colossians", Abbrevs: []string{"Col"}},
	{Code: "1TH", Name: "1 Thessalonians", Ordinal: 1, Stem: "Thessalonians", Abbrevs: []string{"Thess", "Thes", "Th"}},
	{Code: "2TH", Name: "2 Thessalonians", Ordinal: 2, Stem: "Thessalonians", Abbrevs: []string{"Thess", "Thes", "Th"}},
	{Code: "1TI", Name: "1 Timothy", Ordinal: 1, Stem: "Timothy", Abbrevs: []string{"Tim", "Ti"}},
	{Code: "2TI", Name: "2 Timothy", Ordinal: 2, Stem: "Timothy", Abbrevs: []string{"Tim", "Ti"}},
	{Code: "TIT", Name: "Titus", Abbrevs: []string{"Tit", "Tt"}},
	{Code: "PHM", Name: "Philemon", Abbrevs: []string{"Philem", "Phlm", "Phm"}},
	{Code: "HEB", Name: "Hebrews", Abbrevs: []string{"Heb"}},
	{Code: "JAS", Name: "James", Abbrevs: []string{"Jas", "Jm"}},
	{Code: "1PE", Name: "1 Peter", Ordinal: 1, Stem: "Peter", Abbrevs: []string{"Pet", "Pe", "Pt"}},
	{Code: "2PE", Name: "2 Peter", Ordinal: 2, Stem: "Peter", Abbrevs: []string{"Pet", "Pe", "Pt"}},
	{Code: "1JN", Name: "1 John", Ordinal: 1, Stem: "John", Abbrevs: []string{"Jhn", "Jn", "Jo"}},
	{Code: "2JN", Name: "2 John", Ordinal: 2, Stem: "John", Abbrevs: []string{"Jhn", "Jn", "Jo"}},
	{Code: "3JN", Name: "3 John", Ordinal: 3, Stem: "John", Abbrevs: []string{"Jhn", "Jn", "Jo"}},
	{Code: "JUD", Name: "Jude", Abbrevs: []string{"Jud", "Jd"}},
	{Code: "REV", Name: "Revelation", Abbrevs: []string{"Rev", "Re", "Rv", "Apoc"}},
}

// ordinalPrefixes lists the surface forms of a book ordinal.
var ordinalPrefixes = map[int][]string{
	1: {"1", "1st", "I", "First"},
	2: {"2", "2nd", "II", "Second"},
	3: {"3", "3rd", "III", "Third"},
}

// BookByCode returns the book with the given canonical code.
func BookByCode(code string) (Book, bool) {
	for _, b := range Books {
		if b.Code == code {
			return b, true
		}
	}
	return Book{}, false
}
