package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/desertthunder/tracklist/internal/models"
	"github.com/desertthunder/tracklist/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *sql.DB, username string) *models.User {
	t.Helper()

	user := models.NewUser(0, username, username+"@example.com", "hash")
	if err := NewUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(ctx, db, "artists")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(ctx, db, "nope"); err == nil {
		t.Error("expected error for unknown sequence table")
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserRepository(db)
		user := models.NewUser(0, "ada", "ada@example.com", "hash")

		if err := repo.Create(ctx, user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		if user.ID() == "" {
			t.Error("user ID should be set after creation")
		}
		if user.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", user.Sequence())
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserRepository(db)
		user := createUser(t, db, "ada")

		byID, err := repo.Get(ctx, user.ID())
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if byID.Email() != "ada@example.com" {
			t.Errorf("expected email ada@example.com, got %s", byID.Email())
		}

		byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
		if err != nil {
			t.Fatalf("failed to get user by email: %v", err)
		}
		if byEmail.ID() != user.ID() {
			t.Errorf("expected ID %s, got %s", user.ID(), byEmail.ID())
		}

		byName, err := repo.GetByUsername(ctx, "ada")
		if err != nil {
			t.Fatalf("failed to get user by username: %v", err)
		}
		if byName.PasswordHash() != "hash" {
			t.Errorf("expected stored hash, got %s", byName.PasswordHash())
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserRepository(db)
		createUser(t, db, "ada")
		createUser(t, db, "grace")

		all, err := repo.List(ctx, nil)
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}
		if len(all) != 2 || all[0].Username() != "ada" {
			t.Fatalf("expected [ada grace], got %d users", len(all))
		}

		filtered, err := repo.List(ctx, map[string]any{"email": "grace@example.com"})
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}
		if len(filtered) != 1 || filtered[0].Username() != "grace" {
			t.Errorf("expected only grace, got %v", filtered)
		}
	})
}

func TestUserRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("ValidationError", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		if err := repo.Create(ctx, models.NewUser(0, "ada", "", "hash")); err == nil {
			t.Fatal("expected validation error for empty email")
		}
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserRepository(db)
		createUser(t, db, "ada")

		err := repo.Create(ctx, models.NewUser(0, "other", "ada@example.com", "hash"))
		if !errors.Is(err, shared.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserRepository(db)
		createUser(t, db, "ada")

		err := repo.Create(ctx, models.NewUser(0, "ada", "different@example.com", "hash"))
		if !errors.Is(err, shared.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		if _, err := repo.GetByEmail(ctx, "ghost@example.com"); !errors.Is(err, shared.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestArtistRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("GetOrCreate Is Idempotent", func(t *testing.T) {
		repo := NewArtistRepository(setupTestDB(t))

		first, created, err := repo.GetOrCreate(ctx, "Queen")
		if err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}
		if !created {
			t.Error("first call should create the artist")
		}

		second, created, err := repo.GetOrCreate(ctx, "Queen")
		if err != nil {
			t.Fatalf("failed to get artist: %v", err)
		}
		if created {
			t.Error("second call should not create the artist")
		}
		if first.ID() != second.ID() {
			t.Errorf("expected same artist, got %s and %s", first.ID(), second.ID())
		}

		all, _ := repo.List(ctx, nil)
		if len(all) != 1 {
			t.Errorf("expected 1 artist, got %d", len(all))
		}
	})

	t.Run("Names Are Case Sensitive", func(t *testing.T) {
		repo := NewArtistRepository(setupTestDB(t))

		a, _, _ := repo.GetOrCreate(ctx, "queen")
		b, _, _ := repo.GetOrCreate(ctx, "Queen")
		if a.ID() == b.ID() {
			t.Error("differently cased names should be distinct artists")
		}
	})

	t.Run("Concurrent GetOrCreate", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewArtistRepository(db)

		var wg sync.WaitGroup
		ids := make([]string, 8)
		for i := range ids {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				artist, _, err := repo.GetOrCreate(ctx, "Radiohead")
				if err != nil {
					t.Errorf("GetOrCreate failed: %v", err)
					return
				}
				ids[i] = artist.ID()
			}(i)
		}
		wg.Wait()

		for _, id := range ids[1:] {
			if id != ids[0] {
				t.Fatalf("concurrent calls returned different artists: %v", ids)
			}
		}
	})

	t.Run("Create Duplicate", func(t *testing.T) {
		repo := NewArtistRepository(setupTestDB(t))
		if err := repo.Create(ctx, models.NewArtist(0, "Queen")); err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}
		if err := repo.Create(ctx, models.NewArtist(0, "Queen")); !errors.Is(err, shared.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := NewArtistRepository(setupTestDB(t))
		if _, err := repo.GetByName(ctx, "Nobody"); !errors.Is(err, shared.ErrArtistNotFound) {
			t.Errorf("expected ErrArtistNotFound, got %v", err)
		}
	})
}

func TestTrackRepository(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*TrackRepository, *models.Artist) {
		db := setupTestDB(t)
		artist, _, err := NewArtistRepository(db).GetOrCreate(ctx, "The Beatles")
		if err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}
		return NewTrackRepository(db), artist
	}

	t.Run("Upsert Inserts Then Overwrites Rating", func(t *testing.T) {
		repo, artist := setup(t)

		track, err := repo.Upsert(ctx, "Yesterday", artist.ID(), 5)
		if err != nil {
			t.Fatalf("failed to upsert track: %v", err)
		}
		if track.Rating() != 5 {
			t.Errorf("expected rating 5, got %d", track.Rating())
		}

		again, err := repo.Upsert(ctx, "Yesterday", artist.ID(), 3)
		if err != nil {
			t.Fatalf("failed to upsert track: %v", err)
		}
		if again.ID() != track.ID() {
			t.Error("upsert should keep the same row")
		}
		if again.Rating() != 3 {
			t.Errorf("expected rating 3, got %d", again.Rating())
		}
	})

	t.Run("Upsert Keeps Original Artist", func(t *testing.T) {
		repo, artist := setup(t)
		other, _, _ := NewArtistRepository(repo.db).GetOrCreate(ctx, "Boyz II Men")

		if _, err := repo.Upsert(ctx, "Yesterday", artist.ID(), 5); err != nil {
			t.Fatalf("failed to upsert track: %v", err)
		}
		track, err := repo.Upsert(ctx, "Yesterday", other.ID(), 8)
		if err != nil {
			t.Fatalf("failed to upsert track: %v", err)
		}
		if track.ArtistID() != artist.ID() {
			t.Error("re-adding a title must not rebind the artist")
		}
		if track.Rating() != 8 {
			t.Errorf("expected rating 8, got %d", track.Rating())
		}
	})

	t.Run("Upsert Unknown Artist", func(t *testing.T) {
		repo, _ := setup(t)
		if _, err := repo.Upsert(ctx, "Ghost", "missing-artist", 5); !errors.Is(err, shared.ErrArtistNotFound) {
			t.Errorf("expected ErrArtistNotFound, got %v", err)
		}
	})

	t.Run("UpdateRating", func(t *testing.T) {
		repo, artist := setup(t)
		if _, err := repo.Upsert(ctx, "Yesterday", artist.ID(), 5); err != nil {
			t.Fatalf("failed to upsert track: %v", err)
		}

		updated, err := repo.UpdateRating(ctx, "Yesterday", 9)
		if err != nil || !updated {
			t.Fatalf("expected update, got %v %v", updated, err)
		}

		track, _ := repo.GetByTitle(ctx, "Yesterday")
		if track.Rating() != 9 {
			t.Errorf("expected rating 9, got %d", track.Rating())
		}

		updated, err = repo.UpdateRating(ctx, "Missing", 9)
		if err != nil || updated {
			t.Errorf("missing track should be a silent no-op, got %v %v", updated, err)
		}

		if _, err := repo.UpdateRating(ctx, "Yesterday", 0); !errors.Is(err, shared.ErrInvalidRating) {
			t.Errorf("expected ErrInvalidRating, got %v", err)
		}
	})

	t.Run("Create And List", func(t *testing.T) {
		repo, artist := setup(t)
		if err := repo.Create(ctx, models.NewTrack(0, "Help!", artist.ID(), 7)); err != nil {
			t.Fatalf("failed to create track: %v", err)
		}
		if err := repo.Create(ctx, models.NewTrack(0, "Help!", artist.ID(), 7)); !errors.Is(err, shared.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}

		tracks, err := repo.List(ctx, map[string]any{"artist_id": artist.ID()})
		if err != nil {
			t.Fatalf("failed to list tracks: %v", err)
		}
		if len(tracks) != 1 {
			t.Errorf("expected 1 track, got %d", len(tracks))
		}
	})
}

func TestPlaylistRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("GetOrCreate Per Owner", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPlaylistRepository(db)
		ada := createUser(t, db, "ada")
		grace := createUser(t, db, "grace")

		first, created, err := repo.GetOrCreate(ctx, ada.ID(), "Road Trip")
		if err != nil || !created {
			t.Fatalf("expected creation, got %v %v", created, err)
		}

		again, created, err := repo.GetOrCreate(ctx, ada.ID(), "Road Trip")
		if err != nil || created {
			t.Fatalf("expected existing playlist, got %v %v", created, err)
		}
		if again.ID() != first.ID() {
			t.Error("expected the same playlist")
		}

		other, created, err := repo.GetOrCreate(ctx, grace.ID(), "Road Trip")
		if err != nil || !created {
			t.Fatalf("another owner should get their own playlist, got %v %v", created, err)
		}
		if other.ID() == first.ID() {
			t.Error("owners must not share playlists")
		}

		owned, _ := repo.List(ctx, map[string]any{"user_id": ada.ID()})
		if len(owned) != 1 {
			t.Errorf("expected 1 playlist for ada, got %d", len(owned))
		}
	})

	t.Run("Unknown Owner", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		if _, _, err := repo.GetOrCreate(ctx, "ghost", "Road Trip"); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("Membership", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPlaylistRepository(db)
		user := createUser(t, db, "ada")
		artist, _, _ := NewArtistRepository(db).GetOrCreate(ctx, "The Beatles")
		track, _ := NewTrackRepository(db).Upsert(ctx, "Yesterday", artist.ID(), 5)
		playlist, _, _ := repo.GetOrCreate(ctx, user.ID(), "Oldies")

		added, err := repo.AddTrack(ctx, playlist.ID(), track.ID())
		if err != nil || !added {
			t.Fatalf("expected track to be added, got %v %v", added, err)
		}

		added, err = repo.AddTrack(ctx, playlist.ID(), track.ID())
		if err != nil || added {
			t.Fatalf("second add should be a no-op, got %v %v", added, err)
		}

		count, _ := repo.CountTracks(ctx, playlist.ID())
		if count != 1 {
			t.Errorf("expected 1 membership row, got %d", count)
		}

		entries, err := repo.Tracks(ctx, playlist.ID())
		if err != nil {
			t.Fatalf("failed to list tracks: %v", err)
		}
		if len(entries) != 1 || entries[0].Artist != "The Beatles" || entries[0].Rating != 5 {
			t.Errorf("unexpected entries: %+v", entries)
		}
	})

	t.Run("Delete Removes Membership Only", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPlaylistRepository(db)
		tracks := NewTrackRepository(db)
		user := createUser(t, db, "ada")
		artist, _, _ := NewArtistRepository(db).GetOrCreate(ctx, "Queen")
		track, _ := tracks.Upsert(ctx, "Bohemian Rhapsody", artist.ID(), 10)
		playlist, _, _ := repo.GetOrCreate(ctx, user.ID(), "Epic")
		repo.AddTrack(ctx, playlist.ID(), track.ID())

		deleted, err := repo.Delete(ctx, playlist.ID())
		if err != nil || !deleted {
			t.Fatalf("expected delete, got %v %v", deleted, err)
		}

		if _, err := repo.Get(ctx, playlist.ID()); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound after delete, got %v", err)
		}
		if _, err := tracks.GetByTitle(ctx, "Bohemian Rhapsody"); err != nil {
			t.Errorf("track should survive playlist deletion: %v", err)
		}
		count, _ := repo.CountTracks(ctx, playlist.ID())
		if count != 0 {
			t.Errorf("expected membership rows to be removed, got %d", count)
		}

		deleted, err = repo.Delete(ctx, playlist.ID())
		if err != nil || deleted {
			t.Errorf("deleting again should be a silent no-op, got %v %v", deleted, err)
		}
	})
}
