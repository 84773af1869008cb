package session

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/example/vocatrain/internal/catalog"
	"github.com/example/vocatrain/internal/progress"
	"github.com/example/vocatrain/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDocs is an in-memory stand-in for the database document store
type fakeDocs struct {
	data map[string][]byte
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{data: make(map[string][]byte)}
}

func (f *fakeDocs) Get(key string, out interface{}) (bool, error) {
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (f *fakeDocs) Put(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeDocs) Delete(key string) error {
	delete(f.data, key)
	return nil
}

// testEnv bundles a catalog, store and generator over shared documents
type testEnv struct {
	docs  *fakeDocs
	cat   *catalog.Catalog
	store *progress.Store
	snaps *Snapshots
	gen   *Generator
}

// newTestEnv builds wordCount beginner words, each with sentenceCount
// example sentences. Word ids start at 1; sentence ids are globally unique.
func newTestEnv(t *testing.T, wordCount, sentenceCount int) *testEnv {
	t.Helper()
	var words []models.VocabularyItem
	var sentences []models.SentenceItem
	sentenceID := 0
	for id := 1; id <= wordCount; id++ {
		words = append(words, models.VocabularyItem{
			ID:          id,
			English:     fmt.Sprintf("word-%d", id),
			Translation: fmt.Sprintf("translation-%d", id),
			Difficulty:  models.DifficultyBeginner,
		})
		for s := 0; s < sentenceCount; s++ {
			sentenceID++
			sentences = append(sentences, models.SentenceItem{
				ID:          sentenceID,
				WordID:      id,
				Text:        fmt.Sprintf("sentence-%d", sentenceID),
				Translation: fmt.Sprintf("sentence-translation-%d", sentenceID),
			})
		}
	}

	docs := newFakeDocs()
	store := progress.NewStore(docs)
	cat := catalog.New(words, sentences)
	snaps := NewSnapshots(docs)
	return &testEnv{
		docs:  docs,
		cat:   cat,
		store: store,
		snaps: snaps,
		gen:   NewGenerator(cat, store, snaps),
	}
}

func countKinds(items []models.SessionItem) map[models.ItemKind]int {
	counts := make(map[models.ItemKind]int)
	for _, item := range items {
		counts[item.Kind]++
	}
	return counts
}

func TestFlashcardSessionAllNew(t *testing.T) {
	env := newTestEnv(t, 5, 0)

	sess, err := env.gen.FlashcardSession()
	require.NoError(t, err)

	assert.Len(t, sess.Items, 5)
	for _, item := range sess.Items {
		assert.Equal(t, models.ItemNew, item.Kind)
	}
}

func TestFlashcardSessionEmptyPool(t *testing.T) {
	env := newTestEnv(t, 0, 0)

	_, err := env.gen.FlashcardSession()
	assert.Equal(t, ErrNoAvailableWords, err)
}

func TestFlashcardComposition(t *testing.T) {
	env := newTestEnv(t, 50, 0)
	for id := 1; id <= 10; id++ {
		env.store.MarkWordLearned(id)
	}
	for id := 11; id <= 20; id++ {
		env.store.MarkWordReview(id)
	}

	sess, err := env.gen.FlashcardSession()
	require.NoError(t, err)
	require.Len(t, sess.Items, FlashcardCap)

	counts := countKinds(sess.Items)
	assert.Equal(t, 2, counts[models.ItemLearned]) // 10% of 20
	assert.Equal(t, 6, counts[models.ItemReview])  // 30% of 20
	assert.Equal(t, 12, counts[models.ItemNew])    // remainder
}

func TestNewCountAbsorbsSmallReviewPool(t *testing.T) {
	env := newTestEnv(t, 31, 0)
	env.store.MarkWordReview(31)

	sess, err := env.gen.FlashcardSession()
	require.NoError(t, err)
	require.Len(t, sess.Items, FlashcardCap)

	counts := countKinds(sess.Items)
	assert.Equal(t, 1, counts[models.ItemReview])
	assert.Equal(t, 19, counts[models.ItemNew])
	assert.Zero(t, counts[models.ItemLearned])
}

func TestReviewBackfillsWhenNewPoolRunsOut(t *testing.T) {
	// 2 new words and a deep review pool: review items fill the remainder
	env := newTestEnv(t, 30, 0)
	for id := 3; id <= 30; id++ {
		env.store.MarkWordReview(id)
	}

	sess, err := env.gen.FlashcardSession()
	require.NoError(t, err)
	require.Len(t, sess.Items, FlashcardCap)

	counts := countKinds(sess.Items)
	assert.Equal(t, 2, counts[models.ItemNew])
	assert.Equal(t, 18, counts[models.ItemReview])
}

func TestFlashcardSessionItemsUnique(t *testing.T) {
	env := newTestEnv(t, 40, 0)

	sess, err := env.gen.FlashcardSession()
	require.NoError(t, err)

	seen := make(map[int]bool)
	for _, item := range sess.Items {
		assert.False(t, seen[item.ItemID], "item %d sampled twice", item.ItemID)
		seen[item.ItemID] = true
	}
}

func TestFlashcardAdvanceWraps(t *testing.T) {
	env := newTestEnv(t, 3, 0)

	sess, err := env.gen.FlashcardSession()
	require.NoError(t, err)
	require.Len(t, sess.Items, 3)

	for i := 0; i < 3; i++ {
		sess, err = env.gen.Advance(sess)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, sess.CurrentIndex)
}

func TestFlashcardSessionResumesFromSnapshot(t *testing.T) {
	env := newTestEnv(t, 25, 0)

	first, err := env.gen.FlashcardSession()
	require.NoError(t, err)
	first, err = env.gen.Advance(first)
	require.NoError(t, err)

	// A fresh generator over the same documents picks up the same queue
	gen2 := NewGenerator(env.cat, env.store, env.snaps)
	resumed, err := gen2.FlashcardSession()
	require.NoError(t, err)

	assert.Equal(t, first.Items, resumed.Items)
	assert.Equal(t, first.CurrentIndex, resumed.CurrentIndex)
}

func TestSentenceSessionRequiresFiveLearnedWords(t *testing.T) {
	env := newTestEnv(t, 10, 2)
	for id := 1; id <= 4; id++ {
		env.store.MarkWordLearned(id)
	}

	_, err := env.gen.SentenceSession()
	assert.Equal(t, ErrNeedMoreWords, err)
}

func TestSentenceSessionDrawsFromLearnedWordsOnly(t *testing.T) {
	env := newTestEnv(t, 10, 2)
	for id := 1; id <= 5; id++ {
		env.store.MarkWordLearned(id)
	}

	sess, err := env.gen.SentenceSession()
	require.NoError(t, err)
	require.NotEmpty(t, sess.Items)
	assert.LessOrEqual(t, len(sess.Items), SentenceCap)

	// Sentences 1..10 belong to words 1..5; nothing beyond may appear
	for _, item := range sess.Items {
		assert.LessOrEqual(t, item.ItemID, 10)
	}
}

func TestSentenceSessionRegeneratesWhenExhausted(t *testing.T) {
	env := newTestEnv(t, 10, 2)
	for id := 1; id <= 5; id++ {
		env.store.MarkWordLearned(id)
	}

	sess, err := env.gen.SentenceSession()
	require.NoError(t, err)
	size := len(sess.Items)
	require.Greater(t, size, 1)

	for i := 0; i < size-1; i++ {
		sess, err = env.gen.Advance(sess)
		require.NoError(t, err)
	}
	// The cursor now sits on the last item; advancing regenerates
	fresh, err := env.gen.Advance(sess)
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.CurrentIndex)
	assert.Empty(t, fresh.Results)
}

func TestSentenceSnapshotInvalidatedByProgressChange(t *testing.T) {
	env := newTestEnv(t, 10, 1)
	for id := 1; id <= 5; id++ {
		env.store.MarkWordLearned(id)
	}

	first, err := env.gen.SentenceSession()
	require.NoError(t, err)
	first, err = env.gen.Advance(first)
	require.NoError(t, err)
	require.Equal(t, 1, first.CurrentIndex)

	// Learning a sixth word grows the sentence pool, so the fingerprint no
	// longer matches and the saved position is discarded.
	env.store.MarkWordLearned(6)
	gen2 := NewGenerator(env.cat, env.store, env.snaps)
	regenerated, err := gen2.SentenceSession()
	require.NoError(t, err)
	assert.Equal(t, 0, regenerated.CurrentIndex)
	assert.Equal(t, 6, regenerated.PoolLength)
}

func TestSnapshotPoolLengthMismatchIsCacheMiss(t *testing.T) {
	docs := newFakeDocs()
	snaps := NewSnapshots(docs)

	snaps.Save(models.SessionFlashcards, models.SessionSnapshot{
		Items:      []models.SessionItem{{ItemID: 1, Kind: models.ItemNew}},
		PoolLength: 10,
	})

	_, ok := snaps.Load(models.SessionFlashcards, 8)
	assert.False(t, ok)

	// The mismatching snapshot is gone entirely, not just skipped
	_, ok = snaps.Load(models.SessionFlashcards, 10)
	assert.False(t, ok)
}

func TestCorruptedSnapshotRegenerates(t *testing.T) {
	env := newTestEnv(t, 8, 0)

	// A snapshot referencing a word the catalog does not have
	env.snaps.Save(models.SessionFlashcards, models.SessionSnapshot{
		Items:      []models.SessionItem{{ItemID: 999, Kind: models.ItemNew}, {ItemID: 1, Kind: models.ItemNew}},
		PoolLength: 8,
	})

	sess, err := env.gen.FlashcardSession()
	require.NoError(t, err)
	for _, item := range sess.Items {
		_, ok := env.cat.WordByID(item.ItemID)
		assert.True(t, ok)
	}
}

func TestClearAllRemovesEverySnapshot(t *testing.T) {
	docs := newFakeDocs()
	snaps := NewSnapshots(docs)

	for _, st := range models.SessionTypes {
		require.NoError(t, docs.Put(snapshotKey(st), models.SessionSnapshot{PoolLength: 1}))
	}
	// A neighboring preference document must survive
	require.NoError(t, docs.Put("pref:voice_api_key", "secret"))

	snaps.ClearAll()

	for _, st := range models.SessionTypes {
		_, found := docs.data[snapshotKey(st)]
		assert.False(t, found)
	}
	_, found := docs.data["pref:voice_api_key"]
	assert.True(t, found)
}
