package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/avolkov/catalog_insights/internal/config"
	"github.com/avolkov/catalog_insights/internal/domain"
	"github.com/avolkov/catalog_insights/internal/pkg/database"
	"github.com/avolkov/catalog_insights/internal/pkg/logger"
)

const (
	productCount = 1000
	movieCount   = 1000
	batchSize    = 100
)

var (
	brands = []string{"Apple", "Dell", "Sony", "Samsung", "Logitech", "Nintendo", "Asus", "HP", "Lenovo", "MSI", "Corsair", "Razer", "BenQ", "LG", "Canon", "Nikon", "GoPro", "DJI", "Anker", "Belkin", "Intel", "AMD", "NVIDIA", "Kingston", "Seagate", "Western Digital", "JBL", "Beats", "Skullcandy", "Jabra"}

	productCategories = []string{"Laptops", "Smartphones", "Tablets", "Cameras", "Drones", "Audio", "Gaming", "Accessories", "Monitors", "Storage"}

	origins = []string{"USA", "Japan", "China", "South Korea", "Taiwan", "Germany", "Switzerland", "UK", "Canada", "Singapore"}

	adjectives = []string{"Professional", "Premium", "Compact", "Portable", "Ultra", "Elite", "Pro", "Max", "Essential", "Smart", "Advanced", "Wireless", "Turbo", "Quantum"}

	productTypes = map[string][]string{
		"Laptops":     {"Laptop", "Ultrabook", "Gaming Laptop", "Notebook", "Workstation", "Chromebook"},
		"Smartphones": {"Smartphone", "Phone", "5G Phone", "Flagship", "Budget Phone"},
		"Tablets":     {"Tablet", "Pad", "Touch Device", "2-in-1 Tablet"},
		"Cameras":     {"Camera", "DSLR", "Mirrorless", "Action Camera", "Compact Camera"},
		"Drones":      {"Drone", "Quadcopter", "Flying Camera", "Professional Drone"},
		"Audio":       {"Headphones", "Earbuds", "Speaker", "Soundbar", "Wireless Earbuds"},
		"Gaming":      {"Console", "Gaming Device", "Controller", "Gaming PC"},
		"Accessories": {"Keyboard", "Mouse", "Stand", "Charger", "Hub", "Adapter"},
		"Monitors":    {"Monitor", "Display", "4K Monitor", "Gaming Monitor", "Ultrawide Monitor"},
		"Storage":     {"SSD", "HDD", "External Drive", "Memory Card", "NVMe SSD"},
	}

	basePrices = map[string][2]float64{
		"Laptops":     {800, 2000},
		"Smartphones": {400, 1200},
		"Tablets":     {300, 1000},
		"Cameras":     {500, 2500},
		"Drones":      {400, 1500},
		"Audio":       {100, 600},
		"Gaming":      {300, 1500},
		"Accessories": {20, 300},
		"Monitors":    {200, 1000},
		"Storage":     {50, 500},
	}

	movieGenres    = []string{"Action", "Drama", "Comedy", "Horror", "Sci-Fi", "Romance", "Thriller", "Crime", "Adventure", "Animation", "Mystery", "Fantasy", "Biography", "Documentary", "Family", "War", "Western", "Musical"}
	movieLanguages = []string{"English", "Hindi", "Spanish", "French", "Japanese", "Korean", "Mandarin", "German", "Italian", "Portuguese", "Russian", "Arabic", "Turkish", "Thai", "Tamil", "Telugu"}
	movieCountries = []string{"USA", "India", "UK", "France", "Japan", "South Korea", "China", "Spain", "Germany", "Italy", "Canada", "Australia", "Brazil", "Mexico", "Russia", "Turkey"}
	directors      = []string{"Christopher Nolan", "Steven Spielberg", "Martin Scorsese", "Quentin Tarantino", "Denis Villeneuve", "Bong Joon Ho", "Hayao Miyazaki", "Rajkumar Hirani", "S.S. Rajamouli", "Alfonso Cuaron", "Guillermo del Toro", "Wong Kar-wai", "Park Chan-wook", "Zhang Yimou"}

	titlePrefixes = []string{"The Last", "Dark", "Silent", "Hidden", "Lost", "Eternal", "Crimson", "Shadow", "Rising", "Fallen", "Broken", "Golden", "Iron", "Crystal", "Storm", "Fire", "Ice", "Thunder", "Ocean", "Mountain", "City", "Kingdom", "Empire", "Midnight", "Dawn", "Twilight", "Frozen", "Burning"}
	titleSuffixes = []string{"Warrior", "Hunter", "Legend", "Quest", "Journey", "Mission", "Dreams", "Secrets", "Mystery", "Prophecy", "Destiny", "Fate", "Hope", "Glory", "Revolution", "Rebellion", "Battle", "Return", "Rise", "Awakening", "Redemption", "Truth", "Paradise", "Gateway"}
)

// curatedMovies anchors the movie collection with a handful of well-known
// titles; the rest of the collection is generated.
func curatedMovies() []*domain.Item {
	type m struct {
		title    string
		genres   []string
		rating   float64
		year     int
		language string
		country  string
		director string
		cast     []string
		runtime  int
	}
	seed := []m{
		{"The Dark Knight", []string{"Action", "Crime", "Drama"}, 9.0, 2008, "English", "USA", "Christopher Nolan", []string{"Christian Bale", "Heath Ledger"}, 152},
		{"Inception", []string{"Action", "Sci-Fi", "Thriller"}, 8.8, 2010, "English", "USA", "Christopher Nolan", []string{"Leonardo DiCaprio"}, 148},
		{"Interstellar", []string{"Adventure", "Drama", "Sci-Fi"}, 8.6, 2014, "English", "USA", "Christopher Nolan", []string{"Matthew McConaughey"}, 169},
		{"Parasite", []string{"Drama", "Thriller"}, 8.6, 2019, "Korean", "South Korea", "Bong Joon Ho", []string{"Song Kang-ho"}, 132},
		{"Spirited Away", []string{"Animation", "Adventure", "Family"}, 8.6, 2001, "Japanese", "Japan", "Hayao Miyazaki", []string{"Daveigh Chase"}, 125},
		{"City of God", []string{"Crime", "Drama"}, 8.6, 2002, "Portuguese", "Brazil", "Fernando Meirelles", []string{"Alexandre Rodrigues"}, 130},
		{"3 Idiots", []string{"Comedy", "Drama"}, 8.4, 2009, "Hindi", "India", "Rajkumar Hirani", []string{"Aamir Khan"}, 170},
		{"Oldboy", []string{"Action", "Drama", "Mystery"}, 8.4, 2003, "Korean", "South Korea", "Park Chan-wook", []string{"Choi Min-sik"}, 120},
		{"The Lives of Others", []string{"Drama", "Thriller"}, 8.4, 2006, "German", "Germany", "Florian Henckel von Donnersmarck", []string{"Ulrich Muhe"}, 137},
		{"Amelie", []string{"Comedy", "Romance"}, 8.3, 2001, "French", "France", "Jean-Pierre Jeunet", []string{"Audrey Tautou"}, 122},
		{"Pan's Labyrinth", []string{"Drama", "Fantasy", "War"}, 8.2, 2006, "Spanish", "Spain", "Guillermo del Toro", []string{"Ivana Baquero"}, 118},
		{"RRR", []string{"Action", "Drama"}, 7.9, 2022, "Telugu", "India", "S.S. Rajamouli", []string{"N.T. Rama Rao Jr."}, 187},
		{"In the Mood for Love", []string{"Drama", "Romance"}, 8.1, 2000, "Cantonese", "Hong Kong", "Wong Kar-wai", []string{"Tony Leung Chiu-wai"}, 98},
		{"Train to Busan", []string{"Action", "Horror", "Thriller"}, 7.6, 2016, "Korean", "South Korea", "Yeon Sang-ho", []string{"Gong Yoo"}, 118},
		{"Oppenheimer", []string{"Biography", "Drama", "History"}, 8.3, 2023, "English", "USA", "Christopher Nolan", []string{"Cillian Murphy"}, 180},
	}

	now := time.Now().UTC()
	items := make([]*domain.Item, 0, len(seed))
	for _, s := range seed {
		items = append(items, &domain.Item{
			ID:          primitive.NewObjectID().Hex(),
			Name:        s.title,
			Description: fmt.Sprintf("%s masterpiece directed by %s.", s.language, s.director),
			Categories:  s.genres,
			Rating:      s.rating,
			Year:        s.year,
			Language:    s.language,
			Country:     s.country,
			Director:    s.director,
			Cast:        s.cast,
			Runtime:     s.runtime,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return items
}

func generateProducts(rng *rand.Rand, n int) []*domain.Item {
	now := time.Now().UTC()
	items := make([]*domain.Item, 0, n)

	for i := 1; i <= n; i++ {
		category := productCategories[rng.Intn(len(productCategories))]
		brand := brands[rng.Intn(len(brands))]
		origin := origins[rng.Intn(len(origins))]
		adjective := adjectives[rng.Intn(len(adjectives))]
		types := productTypes[category]
		productType := types[rng.Intn(len(types))]

		bounds := basePrices[category]
		price := float64(int(bounds[0] + rng.Float64()*bounds[1]))
		rating := float64(int((3.5+rng.Float64()*1.5)*10)) / 10
		sold := int64(rng.Intn(5000))
		created := now.Add(-time.Duration(rng.Intn(365*24)) * time.Hour)

		items = append(items, &domain.Item{
			ID:            primitive.NewObjectID().Hex(),
			Name:          fmt.Sprintf("%s %s %s %d", adjective, brand, productType, i),
			Description:   fmt.Sprintf("High-quality %s from %s. Features premium build quality and excellent performance.", productType, brand),
			Categories:    []string{category},
			Brand:         brand,
			Origin:        origin,
			Rating:        rating,
			Price:         price,
			OriginalPrice: price,
			Stock:         int64(rng.Intn(200)),
			Sold:          sold,
			Revenue:       price * float64(sold),
			Discount:      float64(rng.Intn(40)),
			Featured:      rng.Float64() > 0.9,
			Tags:          []string{category, brand, origin},
			Specifications: map[string]string{
				"processor": "Latest Gen",
				"ram":       fmt.Sprintf("%dGB", 8+rng.Intn(24)),
				"storage":   fmt.Sprintf("%dGB", 128+rng.Intn(512)),
				"warranty":  fmt.Sprintf("%d Years", 1+rng.Intn(3)),
			},
			CreatedAt: created,
			UpdatedAt: created,
		})
	}
	return items
}

func generateMovies(rng *rand.Rand, n int) []*domain.Item {
	now := time.Now().UTC()
	items := make([]*domain.Item, 0, n)
	usedTitles := map[string]bool{}

	for i := 0; i < n; i++ {
		primary := movieGenres[rng.Intn(len(movieGenres))]
		secondary := movieGenres[rng.Intn(len(movieGenres))]
		genres := []string{primary}
		if secondary != primary {
			genres = append(genres, secondary)
		}

		year := 2000 + rng.Intn(25)
		rating := float64(int((6.5+rng.Float64()*3)*10)) / 10
		language := movieLanguages[rng.Intn(len(movieLanguages))]
		country := movieCountries[rng.Intn(len(movieCountries))]
		director := directors[rng.Intn(len(directors))]

		var title string
		for attempts := 0; attempts < 10; attempts++ {
			prefix := titlePrefixes[rng.Intn(len(titlePrefixes))]
			suffix := titleSuffixes[rng.Intn(len(titleSuffixes))]
			switch rng.Intn(3) {
			case 0:
				title = fmt.Sprintf("%s %s", prefix, suffix)
			case 1:
				title = fmt.Sprintf("The %s of %s", prefix, suffix)
			default:
				title = fmt.Sprintf("%s %s %d", prefix, suffix, year)
			}
			if !usedTitles[title] {
				break
			}
		}
		usedTitles[title] = true

		created := now.Add(-time.Duration(rng.Intn(365*24)) * time.Hour)

		items = append(items, &domain.Item{
			ID:          primitive.NewObjectID().Hex(),
			Name:        title,
			Description: fmt.Sprintf("A gripping %s narrative showcasing the best of %s filmmaking.", primary, language),
			Categories:  genres,
			Rating:      rating,
			Year:        year,
			Language:    language,
			Country:     country,
			Director:    director,
			Cast:        []string{"Lead Actor", "Supporting Actress"},
			Runtime:     90 + rng.Intn(90),
			CreatedAt:   created,
			UpdatedAt:   created,
		})
	}
	return items
}

func seedCollection(ctx context.Context, db *mongo.Database, schema domain.Schema, items []*domain.Item, log *logger.Logger) error {
	coll := db.Collection(schema.Collection)

	result, err := coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", schema.Collection, err)
	}
	log.Infof("Cleared %d existing documents from %s", result.DeletedCount, schema.Collection)

	for start := 0; start < len(items); start += batchSize {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}
		batch := make([]interface{}, 0, end-start)
		for _, it := range items[start:end] {
			batch = append(batch, it)
		}
		if _, err := coll.InsertMany(ctx, batch); err != nil {
			return fmt.Errorf("failed to insert %s batch: %w", schema.Collection, err)
		}
	}

	log.WithFields(map[string]any{
		"collection": schema.Collection,
		"count":      len(items),
	}).Info("Seeded collection")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env)
	appLogger.Info("Starting catalog seeder...")

	client, err := database.WaitForMongo(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to document store", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(cfg.Mongo.Database)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	productSchema := domain.ProductSchema()
	movieSchema := domain.MovieSchema()

	for _, schema := range []domain.Schema{productSchema, movieSchema} {
		if err := database.EnsureIndexes(ctx, db, schema); err != nil {
			appLogger.Fatalf(err, "Failed to ensure indexes for %s", schema.Collection)
		}
	}

	if err := seedCollection(ctx, db, productSchema, generateProducts(rng, productCount), appLogger); err != nil {
		appLogger.Fatal("Failed to seed products", err)
	}

	movies := curatedMovies()
	movies = append(movies, generateMovies(rng, movieCount-len(movies))...)
	if err := seedCollection(ctx, db, movieSchema, movies, appLogger); err != nil {
		appLogger.Fatal("Failed to seed movies", err)
	}

	appLogger.Info("Seeding completed")
}
