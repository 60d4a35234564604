//go:build ignore

// Package main generates a corpus of multilingual sample texts for trying
// cosim's file picker and scoring against the multilingual model.
// Usage: go run scripts/generate-sample-texts.go -files 50 -output testdata/samples
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	numFiles  = flag.Int("files", 50, "Number of text files to generate")
	outputDir = flag.String("output", "testdata/samples", "Output directory")
	seed      = flag.Int64("seed", 42, "Random seed for reproducibility")
)

// topic holds one subject phrased in every supported language. The same
// index always refers to the same meaning, so cross-language pairs from
// one topic should score high and pairs from different topics low.
type topic struct {
	name      string
	sentences map[string][]string
}

var topics = []topic{
	{
		name: "weather",
		sentences: map[string][]string{
			"en": {
				"The sky clouded over in the afternoon and a light rain began to fall.",
				"Temperatures are expected to drop sharply over the weekend.",
				"A warm wind from the south melted the last of the snow.",
			},
			"es": {
				"El cielo se nubló por la tarde y comenzó a caer una lluvia ligera.",
				"Se espera que las temperaturas bajen bruscamente durante el fin de semana.",
				"Un viento cálido del sur derritió los últimos restos de nieve.",
			},
			"de": {
				"Am Nachmittag zog der Himmel zu und ein leichter Regen setzte ein.",
				"Am Wochenende sollen die Temperaturen stark sinken.",
				"Ein warmer Wind aus dem Süden ließ den letzten Schnee schmelzen.",
			},
			"fr": {
				"Le ciel s'est couvert dans l'après-midi et une pluie fine a commencé à tomber.",
				"Les températures devraient chuter fortement pendant le week-end.",
				"Un vent chaud venu du sud a fait fondre les dernières neiges.",
			},
			"tr": {
				"Öğleden sonra hava kapandı ve hafif bir yağmur başladı.",
				"Hafta sonu sıcaklıkların sert biçimde düşmesi bekleniyor.",
				"Güneyden esen ılık rüzgar son karları eritti.",
			},
		},
	},
	{
		name: "cooking",
		sentences: map[string][]string{
			"en": {
				"Simmer the onions slowly until they turn golden and sweet.",
				"Fresh basil should be added at the very end so it keeps its aroma.",
				"The dough needs to rest for an hour before you shape the loaves.",
			},
			"es": {
				"Cocina las cebollas a fuego lento hasta que estén doradas y dulces.",
				"La albahaca fresca se añade al final para que conserve su aroma.",
				"La masa debe reposar una hora antes de formar los panes.",
			},
			"de": {
				"Die Zwiebeln langsam dünsten, bis sie goldbraun und süß sind.",
				"Frisches Basilikum erst ganz zum Schluss zugeben, damit das Aroma bleibt.",
				"Der Teig muss eine Stunde ruhen, bevor die Brote geformt werden.",
			},
			"fr": {
				"Faites revenir les oignons doucement jusqu'à ce qu'ils soient dorés et sucrés.",
				"Le basilic frais s'ajoute tout à la fin pour garder son parfum.",
				"La pâte doit reposer une heure avant de façonner les pains.",
			},
			"tr": {
				"Soğanları altın rengini alana kadar kısık ateşte yavaşça kavurun.",
				"Taze fesleğen aromasını koruması için en sonda eklenmelidir.",
				"Hamur şekil verilmeden önce bir saat dinlenmelidir.",
			},
		},
	},
	{
		name: "travel",
		sentences: map[string][]string{
			"en": {
				"The night train to the coast leaves from platform nine at half past ten.",
				"We booked a small room overlooking the old harbor.",
				"The hiking trail climbs steadily for two hours before reaching the ridge.",
			},
			"es": {
				"El tren nocturno a la costa sale del andén nueve a las diez y media.",
				"Reservamos una habitación pequeña con vistas al puerto antiguo.",
				"El sendero sube de forma constante durante dos horas hasta la cresta.",
			},
			"de": {
				"Der Nachtzug an die Küste fährt um halb elf von Gleis neun ab.",
				"Wir haben ein kleines Zimmer mit Blick auf den alten Hafen gebucht.",
				"Der Wanderweg steigt zwei Stunden stetig an, bis er den Grat erreicht.",
			},
			"fr": {
				"Le train de nuit pour la côte part du quai neuf à dix heures et demie.",
				"Nous avons réservé une petite chambre donnant sur le vieux port.",
				"Le sentier grimpe régulièrement pendant deux heures avant d'atteindre la crête.",
			},
			"tr": {
				"Sahile giden gece treni dokuzuncu perondan on buçukta kalkıyor.",
				"Eski limana bakan küçük bir oda ayırttık.",
				"Patika, sırta ulaşmadan önce iki saat boyunca sürekli yükseliyor.",
			},
		},
	},
	{
		name: "technology",
		sentences: map[string][]string{
			"en": {
				"The new release cuts startup time roughly in half.",
				"All requests are now logged with a trace identifier.",
				"The cache keeps the most recent embeddings in memory.",
			},
			"es": {
				"La nueva versión reduce el tiempo de arranque aproximadamente a la mitad.",
				"Ahora todas las peticiones se registran con un identificador de traza.",
				"La caché mantiene en memoria las incrustaciones más recientes.",
			},
			"de": {
				"Die neue Version halbiert die Startzeit ungefähr.",
				"Alle Anfragen werden jetzt mit einer Trace-Kennung protokolliert.",
				"Der Cache hält die neuesten Einbettungen im Speicher.",
			},
			"fr": {
				"La nouvelle version réduit le temps de démarrage environ de moitié.",
				"Toutes les requêtes sont désormais journalisées avec un identifiant de trace.",
				"Le cache conserve en mémoire les représentations les plus récentes.",
			},
			"tr": {
				"Yeni sürüm başlangıç süresini yaklaşık yarıya indiriyor.",
				"Artık tüm istekler bir izleme kimliğiyle kaydediliyor.",
				"Önbellek en son vektörleri bellekte tutuyor.",
			},
		},
	},
}

// sampleQueries are written once per run as query suggestions to score
// the generated files against.
var sampleQueries = []string{
	"rain and falling temperatures",
	"how long should the dough rest",
	"a room with a view of the harbor",
	"faster startup after the update",
	"el tiempo empeora este fin de semana",
	"güneyden esen ılık rüzgar",
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	languages := []string{"en", "es", "de", "fr", "tr"}
	for _, lang := range languages {
		if err := os.MkdirAll(filepath.Join(*outputDir, lang), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating subdirectory %s: %v\n", lang, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Generating %d sample texts in %s...\n", *numFiles, *outputDir)

	generated := 0
	for i := 0; i < *numFiles; i++ {
		lang := languages[i%len(languages)]
		top := topics[rng.Intn(len(topics))]

		if err := generateTextFile(rng, top, lang, i); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating file %d: %v\n", i, err)
			continue
		}
		generated++
	}

	queriesPath := filepath.Join(*outputDir, "queries.txt")
	if err := os.WriteFile(queriesPath, []byte(strings.Join(sampleQueries, "\n")+"\n"), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", queriesPath, err)
	}

	fmt.Printf("Generated %d files successfully.\n", generated)
	fmt.Printf("Try: cosim --query \"%s\" --select_file\n", sampleQueries[0])
}

// generateTextFile writes a short paragraph: two to three sentences on one
// topic, shuffled so files on the same topic are paraphrases rather than
// copies.
func generateTextFile(rng *rand.Rand, top topic, lang string, index int) error {
	pool := top.sentences[lang]
	order := rng.Perm(len(pool))

	count := 2 + rng.Intn(len(pool)-1)
	var lines []string
	for _, idx := range order[:count] {
		lines = append(lines, pool[idx])
	}

	content := strings.Join(lines, " ") + "\n"
	filename := filepath.Join(*outputDir, lang, fmt.Sprintf("%s_%s_%d.txt", top.name, lang, index))
	return os.WriteFile(filename, []byte(content), 0644)
}
