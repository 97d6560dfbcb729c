package poetry

import (
	"math/rand"
	"strings"
)

// builtins is the public-domain excerpt collection the daemon falls back on
// when a request carries no custom text. Theme tags line up with the keyword
// lists the theme registry exposes.
var builtins = []Poem{
	{
		Title:  "The Road Not Taken",
		Author: "Robert Frost",
		Lines: []string{
			"Two roads diverged in a yellow wood,",
			"And sorry I could not travel both",
			"And be one traveler, long I stood",
			"And looked down one as far as I could",
		},
		Themes: []string{"nature", "trees", "reflection", "moment"},
	},
	{
		Title:  "Stopping by Woods on a Snowy Evening",
		Author: "Robert Frost",
		Lines: []string{
			"The woods are lovely, dark and deep,",
			"But I have promises to keep,",
			"And miles to go before I sleep,",
			"And miles to go before I sleep.",
		},
		Themes: []string{"forest", "mystery", "nature", "seasons"},
	},
	{
		Title:  "Daffodils",
		Author: "William Wordsworth",
		Lines: []string{
			"I wandered lonely as a cloud",
			"That floats on high o'er vales and hills,",
			"When all at once I saw a crowd,",
			"A host of golden daffodils.",
		},
		Themes: []string{"nature", "growth", "golden", "beauty"},
	},
	{
		Title:  "Hope",
		Author: "Emily Dickinson",
		Lines: []string{
			"Hope is the thing with feathers",
			"That perches in the soul,",
			"And sings the tune without the words,",
			"And never stops at all.",
		},
		Themes: []string{"truth", "essence", "peace", "moment"},
	},
	{
		Title:  "Dreams",
		Author: "Langston Hughes",
		Lines: []string{
			"Hold fast to dreams",
			"For if dreams die",
			"Life is a broken-winged bird",
			"That cannot fly.",
		},
		Themes: []string{"clarity", "truth", "simplicity", "moment"},
	},
	{
		Title:  "The Negro Speaks of Rivers",
		Author: "Langston Hughes",
		Lines: []string{
			"I've known rivers:",
			"I've known rivers ancient as the world and older than the",
			"flow of human blood in human veins.",
			"My soul has grown deep like the rivers.",
		},
		Themes: []string{"water", "flow", "depth", "ancient"},
	},
	{
		Title:  "Sonnet 18",
		Author: "William Shakespeare",
		Lines: []string{
			"Shall I compare thee to a summer's day?",
			"Thou art more lovely and more temperate:",
			"Rough winds do shake the darling buds of May,",
			"And summer's lease hath all too short a date:",
		},
		Themes: []string{"beauty", "time", "seasons", "light"},
	},
	{
		Title:  "Annabel Lee",
		Author: "Edgar Allan Poe",
		Lines: []string{
			"It was many and many a year ago,",
			"In a kingdom by the sea,",
			"That a maiden there lived whom you may know",
			"By the name of Annabel Lee;",
		},
		Themes: []string{"ocean", "sea", "depth", "mystery"},
	},
	{
		Title:  "She Walks in Beauty",
		Author: "Lord Byron",
		Lines: []string{
			"She walks in beauty, like the night",
			"Of cloudless climes and starry skies;",
			"And all that's best of dark and bright",
			"Meet in her aspect and her eyes:",
		},
		Themes: []string{"beauty", "light", "reflection", "golden"},
	},
	{
		Title:  "Ozymandias",
		Author: "Percy Bysshe Shelley",
		Lines: []string{
			"I met a traveller from an antique land,",
			"Who said—Two vast and trunkless legs of stone",
			"Stand in the desert. Near them, on the sand,",
			"Half sunk a shattered visage lies, whose frown,",
		},
		Themes: []string{"time", "ancient", "wisdom", "reflection"},
	},
	{
		Title:  "To Autumn",
		Author: "John Keats",
		Lines: []string{
			"Season of mists and mellow fruitfulness,",
			"Close bosom-friend of the maturing sun;",
			"Conspiring with him how to load and bless",
			"With fruit the vines that round the thatch-eves run;",
		},
		Themes: []string{"seasons", "nature", "earth", "golden"},
	},
	{
		Title:  "The Tyger",
		Author: "William Blake",
		Lines: []string{
			"Tyger Tyger, burning bright,",
			"In the forests of the night;",
			"What immortal hand or eye,",
			"Could frame thy fearful symmetry?",
		},
		Themes: []string{"forest", "mystery", "ancient", "light"},
	},
	{
		Title:  "Walden",
		Author: "Henry David Thoreau",
		Lines: []string{
			"I went to the woods to live deliberately,",
			"To front only the essential facts of life,",
			"And see if I could not learn what it had to teach,",
			"And not, when I came to die, discover that I had not lived.",
		},
		Themes: []string{"forest", "wisdom", "essence", "truth"},
	},
	{
		Title:  "The Summer Day",
		Author: "Mary Oliver",
		Lines: []string{
			"Tell me, what else should I have done?",
			"Doesn't everything die at last, and too soon?",
			"Tell me, what is it you plan to do",
			"with your one wild and precious life?",
		},
		Themes: []string{"nature", "moment", "clarity", "growth"},
	},
	{
		Title:  "Out Beyond Ideas",
		Author: "Rumi",
		Lines: []string{
			"Out beyond ideas of wrongdoing and rightdoing,",
			"there is a field. I'll meet you there.",
			"When the soul lies down in that grass,",
			"the world is too full to talk about.",
		},
		Themes: []string{"peace", "earth", "truth", "simplicity"},
	},
	{
		Title:  "Sitting Alone by Jingting Mountain",
		Author: "Li Bai",
		Lines: []string{
			"The birds have vanished into the sky,",
			"and now the last cloud drains away.",
			"We sit together, the mountain and me,",
			"until only the mountain remains.",
		},
		Themes: []string{"peace", "moment", "reflection", "nature"},
	},
	{
		Title:  "Ancient Pond",
		Author: "Matsuo Bashō",
		Lines: []string{
			"An ancient pond—",
			"a frog leaps in,",
			"the sound of water.",
			"Silent and serene.",
		},
		Themes: []string{"water", "peace", "simplicity", "moment"},
	},
	{
		Title:  "A Love Like That",
		Author: "Hafez",
		Lines: []string{
			"Even after all this time",
			"The sun never says to the earth,",
			"\"You owe me.\"",
			"Look what happens with a love like that.",
		},
		Themes: []string{"light", "golden", "earth", "beauty"},
	},
	{
		Title:  "Where The Mind Is Without Fear",
		Author: "Rabindranath Tagore",
		Lines: []string{
			"Where the mind is without fear and the head is held high",
			"Where knowledge is free",
			"Where the world has not been broken up into fragments",
			"By narrow domestic walls",
		},
		Themes: []string{"wisdom", "clarity", "truth", "growth"},
	},
	{
		Title:  "Remember",
		Author: "Christina Rossetti",
		Lines: []string{
			"Remember me when I am gone away,",
			"Gone far away into the silent land;",
			"When you can no more hold me by the hand,",
			"Nor I half turn to go yet turning stay.",
		},
		Themes: []string{"reflection", "time", "depth", "moment"},
	},
}

// fallback is used when no catalog entry satisfies the line window.
var fallback = Poem{
	Title:  "Nature's Wisdom",
	Author: "Traditional",
	Lines: []string{
		"In the forest deep and green,",
		"Where ancient trees have been,",
		"Nature's wisdom flows so free,",
		"Teaching all who wish to see.",
	},
	Themes: []string{"nature", "forest", "wisdom"},
}

// Catalog selects poems from the built-in collection.
type Catalog struct {
	poems []Poem
	rng   *rand.Rand
}

// NewCatalog builds a catalog backed by the built-in collection. A nil rng
// falls back to the shared global source.
func NewCatalog(rng *rand.Rand) *Catalog {
	poems := make([]Poem, len(builtins))
	copy(poems, builtins)
	return &Catalog{poems: poems, rng: rng}
}

// Len reports the number of poems in the catalog.
func (c *Catalog) Len() int {
	return len(c.poems)
}

func (c *Catalog) intn(n int) int {
	if c.rng != nil {
		return c.rng.Intn(n)
	}
	return rand.Intn(n)
}

// ForThemes picks a poem matching any of the given theme keywords whose line
// count falls inside [minLines, maxLines]. When no keyword matches, any poem
// in the window qualifies; the built-in fallback covers an empty window.
func (c *Catalog) ForThemes(keywords []string, minLines, maxLines int) Poem {
	normalized := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			normalized[kw] = struct{}{}
		}
	}

	inWindow := func(p Poem) bool {
		return len(p.Lines) >= minLines && len(p.Lines) <= maxLines
	}

	var matching []Poem
	for _, poem := range c.poems {
		if !inWindow(poem) {
			continue
		}
		for _, tag := range poem.Themes {
			if _, ok := normalized[tag]; ok {
				matching = append(matching, poem)
				break
			}
		}
	}
	if len(matching) == 0 {
		for _, poem := range c.poems {
			if inWindow(poem) {
				matching = append(matching, poem)
			}
		}
	}
	if len(matching) == 0 {
		return fallback
	}
	return matching[c.intn(len(matching))]
}

// Random returns an arbitrary catalog poem.
func (c *Catalog) Random() Poem {
	if len(c.poems) == 0 {
		return fallback
	}
	return c.poems[c.intn(len(c.poems))]
}
