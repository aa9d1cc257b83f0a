// Package dbtest opens throwaway SQLite databases migrated with the blogd schema.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/blogd/database"
	"github.com/rpupo63/blogd/models"
)

// Open returns a fresh in-memory database. It is closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, _ := open(t)
	return db
}

// OpenWithLaggingReplica returns a database whose reads are routed through
// dbresolver to a second, migrated but empty, database. Only queries pinned to
// the primary see rows written through the returned handle.
func OpenWithLaggingReplica(t testing.TB) *gorm.DB {
	t.Helper()
	db, _ := open(t)
	_, replicaDSN := open(t)

	err := db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: []gorm.Dialector{sqlite.Open(replicaDSN)},
	}))
	if err != nil {
		t.Fatalf("register replica: %v", err)
	}
	return db
}

func open(t testing.TB) (*gorm.DB, string) {
	t.Helper()

	// Named shared-cache memory databases keep every test isolated.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sqlite: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db, dsn
}

// Database wraps Open in the repository aggregate.
func Database(t testing.TB) database.Database {
	t.Helper()
	return database.New(Open(t))
}

// CreateUser stores a user with its profile. The password is "password".
func CreateUser(t testing.TB, db *gorm.DB, username string, admin bool) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    username,
		LastName:     "Tester",
		PasswordHash: string(hash),
		Profile:      &models.UserProfile{IsBlogAdmin: admin},
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// CreatePost stores a post by author. Published posts get publishedAt as their date.
func CreatePost(t testing.TB, db *gorm.DB, author *models.User, title string, published bool, publishedAt time.Time) *models.BlogPost {
	t.Helper()

	post := &models.BlogPost{
		Title:     title,
		Content:   "content of " + title,
		AuthorID:  author.ID,
		Published: published,
		Slug:      uuid.NewString(),
	}
	if published && !publishedAt.IsZero() {
		at := publishedAt.UTC()
		post.PublishedDate = &at
	}
	if err := db.Omit("Author", "Category").Create(post).Error; err != nil {
		t.Fatalf("create post %s: %v", title, err)
	}
	return post
}
