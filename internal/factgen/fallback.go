package factgen

import (
	"math/rand/v2"

	"isthatstilltrue/internal/core"
)

// fallbackScore is the fixed quality score assigned to every curated fact.
const fallbackScore = 0.85

// curated returns a hand-reviewed fact with the fixed fallback score.
func curated(category, statement, correction string, year int, salience, sourceName string) core.FactRecord {
	return core.FactRecord{
		Category:        category,
		Statement:       statement,
		Correction:      correction,
		YearDebunked:    year,
		Salience:        salience,
		SourceName:      sourceName,
		QualityScore:    fallbackScore,
		ConfidenceLevel: core.ConfidenceHigh,
	}
}

var fallbackEN = []core.FactRecord{
	curated("Astronomy",
		"Pluto is the ninth planet of our solar system.",
		"Pluto was reclassified as a dwarf planet by the International Astronomical Union.",
		2006,
		"A generation of students memorized nine planets; today there are eight.",
		"International Astronomical Union"),
	curated("Biology",
		"Different regions of the tongue taste different flavors: sweet at the tip, bitter at the back.",
		"Taste receptors for all basic flavors are distributed across the whole tongue.",
		1974,
		"The tongue map printed in countless textbooks came from a mistranslated 1901 study.",
		"Journal of Cell Biology"),
	curated("Paleontology",
		"Dinosaurs were slow, scaly, lizard-like reptiles that dragged their tails.",
		"Many dinosaurs were agile, warm-blooded, and feathered; birds are their living descendants.",
		1996,
		"The dinosaurs in old schoolbooks look nothing like what fossil evidence now shows.",
		"Nature"),
	curated("Geography",
		"The Great Wall of China is the only human-made structure visible from space.",
		"The wall is barely visible from low orbit; astronauts confirm cities and highways are far easier to spot.",
		2004,
		"Even Chinese textbooks corrected this after the first Chinese astronaut could not see it.",
		"NASA"),
	curated("Biology",
		"Humans use only ten percent of their brains.",
		"Brain imaging shows virtually all regions are active; damage to any area has consequences.",
		1998,
		"The myth survived decades of neuroscience because it sounds motivational.",
		"Scientific American"),
	curated("Chemistry",
		"Atoms are the smallest indivisible particles of matter.",
		"Atoms consist of protons, neutrons, and electrons, which in turn are built from quarks.",
		1964,
		"The word atom means indivisible, yet particle physics keeps dividing it.",
		"CERN"),
	curated("Nutrition",
		"Eating fat makes you fat, so a low-fat diet is always the healthy choice.",
		"Dietary fat quality matters more than quantity; refined sugar played a larger role in the obesity epidemic.",
		2015,
		"Official dietary guidelines reversed decades of low-fat advice.",
		"Dietary Guidelines Advisory Committee"),
	curated("History",
		"People in the Middle Ages believed the Earth was flat until Columbus proved otherwise.",
		"Medieval scholars knew the Earth was round; the flat-earth belief is a 19th-century fabrication.",
		1991,
		"The story was invented by writers long after Columbus and stuck in school curricula.",
		"Journal of Historical Geography"),
}

var fallbackDE = []core.FactRecord{
	curated("Astronomie",
		"Pluto ist der neunte Planet unseres Sonnensystems.",
		"Pluto wurde von der Internationalen Astronomischen Union zum Zwergplaneten herabgestuft.",
		2006,
		"Eine ganze Generation lernte neun Planeten auswendig; heute sind es acht.",
		"Internationale Astronomische Union"),
	curated("Biologie",
		"Verschiedene Zungenregionen schmecken verschiedene Geschmacksrichtungen.",
		"Rezeptoren für alle Grundgeschmacksrichtungen sind über die gesamte Zunge verteilt.",
		1974,
		"Die Zungenkarte aus unzähligen Schulbüchern beruht auf einer Fehlübersetzung von 1901.",
		"Journal of Cell Biology"),
	curated("Paläontologie",
		"Dinosaurier waren langsame, schuppige, echsenartige Reptilien.",
		"Viele Dinosaurier waren wendig, warmblütig und gefiedert; Vögel sind ihre lebenden Nachfahren.",
		1996,
		"Die Dinosaurier alter Schulbücher sehen ganz anders aus als die heutige Fossilienlage.",
		"Nature"),
	curated("Geographie",
		"Die Chinesische Mauer ist das einzige von Menschen gebaute Bauwerk, das man aus dem Weltall sieht.",
		"Die Mauer ist aus dem Orbit kaum erkennbar; Städte und Autobahnen sind deutlich besser sichtbar.",
		2004,
		"Selbst chinesische Schulbücher wurden korrigiert, nachdem der erste chinesische Astronaut sie nicht sehen konnte.",
		"NASA"),
	curated("Biologie",
		"Der Mensch nutzt nur zehn Prozent seines Gehirns.",
		"Bildgebende Verfahren zeigen Aktivität in praktisch allen Hirnregionen.",
		1998,
		"Der Mythos überlebte Jahrzehnte der Neurowissenschaft, weil er motivierend klingt.",
		"Scientific American"),
	curated("Chemie",
		"Atome sind die kleinsten unteilbaren Teilchen der Materie.",
		"Atome bestehen aus Protonen, Neutronen und Elektronen, die wiederum aus Quarks aufgebaut sind.",
		1964,
		"Das Wort Atom bedeutet unteilbar, doch die Teilchenphysik teilt es immer weiter.",
		"CERN"),
	curated("Ernährung",
		"Fett macht fett, deshalb ist eine fettarme Ernährung immer die gesunde Wahl.",
		"Die Qualität der Fette zählt mehr als die Menge; raffinierter Zucker spielte eine größere Rolle.",
		2015,
		"Offizielle Ernährungsrichtlinien kehrten jahrzehntelange Fettarm-Empfehlungen um.",
		"Dietary Guidelines Advisory Committee"),
	curated("Geschichte",
		"Im Mittelalter glaubten die Menschen, die Erde sei flach, bis Kolumbus das Gegenteil bewies.",
		"Mittelalterliche Gelehrte wussten, dass die Erde rund ist; der Flache-Erde-Glaube ist eine Erfindung des 19. Jahrhunderts.",
		1991,
		"Die Geschichte wurde lange nach Kolumbus erfunden und hielt sich hartnäckig in Lehrplänen.",
		"Journal of Historical Geography"),
}

// Localized returns the curated facts for a language in authored order.
// Unknown languages get the English bank.
func Localized(language string) []core.FactRecord {
	var bank []core.FactRecord
	if language == "de" {
		bank = fallbackDE
	} else {
		bank = fallbackEN
	}
	out := make([]core.FactRecord, len(bank))
	copy(out, bank)
	return out
}

// Shuffled returns the curated facts for a language in random order.
// Callers must not assume any ordering from the bank.
func Shuffled(language string) []core.FactRecord {
	out := Localized(language)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

var fallbackProblemsEN = []core.EducationProblem{
	{
		Problem:     "Outdated textbooks",
		Description: "Textbooks were revised on decade-long cycles, so debunked material stayed in classrooms for years.",
		Impact:      "Students memorized claims that researchers had already overturned.",
	},
	{
		Problem:     "Rote memorization",
		Description: "Curricula rewarded reciting facts over questioning how the facts were established.",
		Impact:      "Graduates rarely revisited what they learned, so corrections never reached them.",
	},
}

var fallbackProblemsDE = []core.EducationProblem{
	{
		Problem:     "Veraltete Schulbücher",
		Description: "Schulbücher wurden nur im Jahrzehnt-Rhythmus überarbeitet, widerlegtes Wissen blieb jahrelang im Unterricht.",
		Impact:      "Schüler lernten Behauptungen auswendig, die die Forschung längst verworfen hatte.",
	},
	{
		Problem:     "Auswendiglernen",
		Description: "Lehrpläne belohnten das Aufsagen von Fakten statt der Frage, wie diese Fakten zustande kamen.",
		Impact:      "Absolventen hinterfragten das Gelernte selten, Korrekturen erreichten sie nie.",
	},
}

// LocalizedProblems returns the curated education problems for a language.
func LocalizedProblems(language string) []core.EducationProblem {
	bank := fallbackProblemsEN
	if language == "de" {
		bank = fallbackProblemsDE
	}
	out := make([]core.EducationProblem, len(bank))
	copy(out, bank)
	return out
}
