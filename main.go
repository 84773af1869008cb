package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/vocatrain/internal/bot"
	"github.com/example/vocatrain/internal/catalog"
	"github.com/example/vocatrain/internal/database"
	"github.com/example/vocatrain/internal/excel"
	"github.com/example/vocatrain/internal/notify"
	"github.com/example/vocatrain/internal/progress"
	"github.com/example/vocatrain/internal/scheduler"
	"github.com/example/vocatrain/internal/session"
	"github.com/example/vocatrain/internal/speech"
	"github.com/example/vocatrain/internal/trainer"
	"github.com/example/vocatrain/internal/update"
	"github.com/joho/godotenv"
)

// appVersion is the content version this build ships with. The coordinator
// compares staged versions against the installed record, not this constant.
const appVersion = "1.0.0"

func main() {
	_ = godotenv.Load()

	importPath := flag.String("import", "", "import a vocabulary catalog from an .xlsx or .csv file and exit")
	flag.Parse()

	// Создаем канал для сигналов
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Создаем контекст с отменой
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Подключаемся к базе данных
	err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if *importPath != "" {
		runImport(*importPath)
		return
	}

	// Load the catalog once; a failed load degrades to an empty catalog so
	// the app still starts and reports "no items available".
	cat, err := catalog.Load(database.NewWordRepository(), database.NewSentenceRepository())
	if err != nil {
		log.Printf("Failed to load catalog, continuing with an empty one: %v", err)
		cat = catalog.Empty()
	}

	docs := database.NewDocumentStore()
	store := progress.NewStore(docs)
	snaps := session.NewSnapshots(docs)
	generator := session.NewGenerator(cat, store, snaps)
	coordinator := update.NewCoordinator(docs, update.NewManifestPlatform(), snaps, appVersion)
	core := trainer.New(cat, store, generator, snaps, coordinator)
	voice := speech.New(docs)

	b, err := bot.New(core, voice)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	channel := notify.Select(b.API())
	jobs := scheduler.New(store, store, coordinator, channel)
	jobs.Start()
	defer jobs.Stop()

	// Канал для ожидания завершения бота
	done := make(chan struct{})

	// Горутина для обработки сигналов
	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v\n", sig)
		cancel()

		// Даем время на graceful shutdown
		time.Sleep(1 * time.Second)

		b.Stop()
		close(done)
	}()

	log.Println("Trainer started. Press Ctrl+C to stop.")
	go func() {
		if err := b.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Bot error: %v", err)
		}
	}()

	<-done
	log.Println("Trainer stopped successfully")
}

// runImport loads the catalog file into the database and prints a summary
func runImport(path string) {
	config := excel.DefaultImportConfig()
	config.FilePath = path

	result, err := excel.ImportCatalog(config)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	fmt.Printf("Processed %d rows: %d words, %d sentences, %d skipped\n",
		result.TotalProcessed, result.Words, result.Sentences, result.Skipped)
	for _, e := range result.Errors {
		fmt.Println("  " + e)
	}
}
