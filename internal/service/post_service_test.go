package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/NikitaPolechshuk/django-sprint4/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Category{}, &db.Location{}, &db.Post{}, &db.Comment{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, username string) db.User {
	t.Helper()
	user := db.User{Username: username, Password: "hashed"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func seedCategory(t *testing.T, gdb *gorm.DB, slug string, published bool) db.Category {
	t.Helper()
	category := db.Category{Title: slug, Slug: slug, IsPublished: published}
	if err := gdb.Create(&category).Error; err != nil {
		t.Fatalf("seed category %s: %v", slug, err)
	}
	return category
}

func seedPost(t *testing.T, gdb *gorm.DB, authorID uint, categoryID *uint, pubDate time.Time, published bool) db.Post {
	t.Helper()
	post := db.Post{
		Title:       "post",
		Text:        "text",
		PubDate:     pubDate,
		IsPublished: published,
		AuthorID:    authorID,
		CategoryID:  categoryID,
	}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post
}

func TestPostServiceListVisibilityPredicate(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	author := seedUser(t, gdb, "alice")
	published := seedCategory(t, gdb, "travel", true)
	hidden := seedCategory(t, gdb, "drafts", false)
	now := time.Now()

	visible := seedPost(t, gdb, author.ID, &published.ID, now.Add(-time.Hour), true)
	seedPost(t, gdb, author.ID, &published.ID, now.Add(time.Hour), true)   // future-dated
	seedPost(t, gdb, author.ID, &published.ID, now.Add(-time.Hour), false) // unpublished post
	seedPost(t, gdb, author.ID, &hidden.ID, now.Add(-time.Hour), true)     // unpublished category
	seedPost(t, gdb, author.ID, nil, now.Add(-time.Hour), true)            // no category

	result, err := svc.List(now, 1)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected exactly one visible post, got %d", result.Total)
	}
	if result.Posts[0].ID != visible.ID {
		t.Fatalf("expected post %d, got %d", visible.ID, result.Posts[0].ID)
	}
}

func TestPostServiceListOrdersByPubDateDesc(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	author := seedUser(t, gdb, "alice")
	category := seedCategory(t, gdb, "travel", true)
	now := time.Now()

	older := seedPost(t, gdb, author.ID, &category.ID, now.Add(-48*time.Hour), true)
	newer := seedPost(t, gdb, author.ID, &category.ID, now.Add(-time.Hour), true)

	result, err := svc.List(now, 1)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(result.Posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(result.Posts))
	}
	if result.Posts[0].ID != newer.ID || result.Posts[1].ID != older.ID {
		t.Fatalf("expected order [%d %d], got [%d %d]", newer.ID, older.ID, result.Posts[0].ID, result.Posts[1].ID)
	}
}

func TestPostServiceListAnnotatesCommentCount(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	author := seedUser(t, gdb, "alice")
	category := seedCategory(t, gdb, "travel", true)
	now := time.Now()
	post := seedPost(t, gdb, author.ID, &category.ID, now.Add(-time.Hour), true)

	// One published and one unpublished comment: both count.
	for _, flag := range []bool{true, false} {
		comment := db.Comment{Text: "hi", PubDate: now, IsPublished: flag, AuthorID: author.ID, PostID: &post.ID}
		if err := gdb.Create(&comment).Error; err != nil {
			t.Fatalf("seed comment: %v", err)
		}
	}

	result, err := svc.List(now, 1)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(result.Posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(result.Posts))
	}
	if result.Posts[0].CommentCount != 2 {
		t.Fatalf("expected comment count 2, got %d", result.Posts[0].CommentCount)
	}
}

func TestPostServiceListPaginatesAtTen(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	author := seedUser(t, gdb, "alice")
	category := seedCategory(t, gdb, "travel", true)
	now := time.Now()

	for i := 0; i < 13; i++ {
		seedPost(t, gdb, author.ID, &category.ID, now.Add(-time.Duration(i+1)*time.Hour), true)
	}

	first, err := svc.List(now, 1)
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if len(first.Posts) != PageSize {
		t.Fatalf("expected %d posts on page 1, got %d", PageSize, len(first.Posts))
	}
	if first.Total != 13 || first.TotalPages != 2 {
		t.Fatalf("expected total 13 over 2 pages, got %d over %d", first.Total, first.TotalPages)
	}

	second, err := svc.List(now, 2)
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(second.Posts) != 3 {
		t.Fatalf("expected 3 posts on page 2, got %d", len(second.Posts))
	}
}

func TestPostServiceGetAuthorSeesOwnHiddenPost(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	author := seedUser(t, gdb, "alice")
	viewer := seedUser(t, gdb, "bob")
	category := seedCategory(t, gdb, "travel", true)
	post := seedPost(t, gdb, author.ID, &category.ID, time.Now().Add(-time.Hour), false)

	if _, err := svc.Get(post.ID, author.ID); err != nil {
		t.Fatalf("author should see own hidden post: %v", err)
	}

	if _, err := svc.Get(post.ID, viewer.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound for other viewer, got %v", err)
	}

	if _, err := svc.Get(post.ID, 0); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound for anonymous viewer, got %v", err)
	}
}

func TestPostServiceGetAuthorSeesOwnUncategorizedPost(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	author := seedUser(t, gdb, "alice")
	post := seedPost(t, gdb, author.ID, nil, time.Now().Add(-time.Hour), true)

	if _, err := svc.Get(post.ID, author.ID); err != nil {
		t.Fatalf("author should see own uncategorized post: %v", err)
	}
	if _, err := svc.Get(post.ID, 0); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound for anonymous viewer, got %v", err)
	}
}

func TestPostServiceGetHidesUnpublishedCategoryFromOtherViewers(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	author := seedUser(t, gdb, "alice")
	viewer := seedUser(t, gdb, "bob")
	hidden := seedCategory(t, gdb, "drafts", false)
	post := seedPost(t, gdb, author.ID, &hidden.ID, time.Now().Add(-time.Hour), true)

	if _, err := svc.Get(post.ID, viewer.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound for other viewer, got %v", err)
	}
	if _, err := svc.Get(post.ID, 0); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound for anonymous viewer, got %v", err)
	}
	if _, err := svc.Get(post.ID, author.ID); err != nil {
		t.Fatalf("author should see own post in hidden category: %v", err)
	}
}

func TestPostServiceGetVisiblePostForAnyViewer(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	author := seedUser(t, gdb, "alice")
	category := seedCategory(t, gdb, "travel", true)
	post := seedPost(t, gdb, author.ID, &category.ID, time.Now().Add(-time.Hour), true)

	got, err := svc.Get(post.ID, 0)
	if err != nil {
		t.Fatalf("anonymous viewer should see visible post: %v", err)
	}
	if got.Author.Username != "alice" {
		t.Fatalf("expected preloaded author, got %q", got.Author.Username)
	}
}

func TestPostServiceListByAuthorAppliesVisibilityToOwner(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	author := seedUser(t, gdb, "alice")
	category := seedCategory(t, gdb, "travel", true)
	now := time.Now()
	seedPost(t, gdb, author.ID, &category.ID, now.Add(-time.Hour), true)
	seedPost(t, gdb, author.ID, &category.ID, now.Add(-time.Hour), false)

	// No author bypass on listings: the hidden post stays hidden even in
	// the author's own profile listing.
	profile, result, err := svc.ListByAuthor("alice", now, 1)
	if err != nil {
		t.Fatalf("list by author: %v", err)
	}
	if profile.ID != author.ID {
		t.Fatalf("expected profile %d, got %d", author.ID, profile.ID)
	}
	if result.Total != 1 {
		t.Fatalf("expected 1 visible post, got %d", result.Total)
	}
}

func TestPostServiceListByAuthorUnknownUser(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	if _, _, err := svc.ListByAuthor("nobody", time.Now(), 1); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestPostServiceListByCategory(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	author := seedUser(t, gdb, "alice")
	travel := seedCategory(t, gdb, "travel", true)
	food := seedCategory(t, gdb, "food", true)
	hidden := seedCategory(t, gdb, "secret", false)
	now := time.Now()

	inTravel := seedPost(t, gdb, author.ID, &travel.ID, now.Add(-time.Hour), true)
	seedPost(t, gdb, author.ID, &food.ID, now.Add(-time.Hour), true)

	category, result, err := svc.ListByCategory("travel", now, 1)
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if category.ID != travel.ID {
		t.Fatalf("expected category %d, got %d", travel.ID, category.ID)
	}
	if result.Total != 1 || result.Posts[0].ID != inTravel.ID {
		t.Fatalf("expected only post %d, got total %d", inTravel.ID, result.Total)
	}

	if _, _, err := svc.ListByCategory("secret", now, 1); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound for unpublished category %q, got %v", hidden.Slug, err)
	}
	if _, _, err := svc.ListByCategory("missing", now, 1); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound for missing slug, got %v", err)
	}
}

func TestPostServiceCreateForcesAuthor(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	author := seedUser(t, gdb, "alice")
	category := seedCategory(t, gdb, "travel", true)

	post, err := svc.Create(PostInput{
		Title:       "Hi",
		Text:        "body",
		PubDate:     time.Now().Add(-time.Hour),
		IsPublished: true,
		CategoryID:  &category.ID,
		AuthorID:    author.ID,
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.AuthorID != author.ID {
		t.Fatalf("expected author %d, got %d", author.ID, post.AuthorID)
	}
}

func TestPostServiceUpdateRejectsNonOwner(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	alice := seedUser(t, gdb, "alice")
	bob := seedUser(t, gdb, "bob")
	category := seedCategory(t, gdb, "travel", true)
	post := seedPost(t, gdb, alice.ID, &category.ID, time.Now().Add(-time.Hour), true)

	input := PostInput{Title: "hijacked", Text: "x", PubDate: time.Now(), IsPublished: true}
	if _, err := svc.Update(post.ID, bob.ID, input); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if _, err := svc.Update(post.ID, 0, input); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for anonymous actor, got %v", err)
	}

	var unchanged db.Post
	if err := gdb.First(&unchanged, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if unchanged.Title != "post" {
		t.Fatalf("title should be unchanged, got %q", unchanged.Title)
	}
}

func TestPostServiceUpdateCanUnpublish(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	alice := seedUser(t, gdb, "alice")
	category := seedCategory(t, gdb, "travel", true)
	now := time.Now()
	post := seedPost(t, gdb, alice.ID, &category.ID, now.Add(-time.Hour), true)

	if _, err := svc.Update(post.ID, alice.ID, PostInput{
		Title:       post.Title,
		Text:        post.Text,
		PubDate:     post.PubDate,
		IsPublished: false,
		CategoryID:  post.CategoryID,
	}); err != nil {
		t.Fatalf("unpublish post: %v", err)
	}

	result, err := svc.List(now, 1)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if result.Total != 0 {
		t.Fatalf("unpublished post should be gone from index, got %d", result.Total)
	}

	if _, err := svc.Get(post.ID, alice.ID); err != nil {
		t.Fatalf("author should still see unpublished post: %v", err)
	}
}

func TestPostServiceDeleteOrphansComments(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	alice := seedUser(t, gdb, "alice")
	bob := seedUser(t, gdb, "bob")
	category := seedCategory(t, gdb, "travel", true)
	post := seedPost(t, gdb, alice.ID, &category.ID, time.Now().Add(-time.Hour), true)

	for i := 0; i < 3; i++ {
		comment := db.Comment{Text: "hi", PubDate: time.Now(), IsPublished: true, AuthorID: bob.ID, PostID: &post.ID}
		if err := gdb.Create(&comment).Error; err != nil {
			t.Fatalf("seed comment: %v", err)
		}
	}

	if err := svc.Delete(post.ID, bob.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for non-owner delete, got %v", err)
	}

	if err := svc.Delete(post.ID, alice.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}

	var postCount int64
	if err := gdb.Unscoped().Model(&db.Post{}).Where("id = ?", post.ID).Count(&postCount).Error; err != nil {
		t.Fatalf("count posts: %v", err)
	}
	if postCount != 0 {
		t.Fatalf("post should be hard-deleted, found %d rows", postCount)
	}

	var orphans int64
	if err := gdb.Model(&db.Comment{}).Where("post_id IS NULL").Count(&orphans).Error; err != nil {
		t.Fatalf("count orphaned comments: %v", err)
	}
	if orphans != 3 {
		t.Fatalf("expected 3 orphaned comments, got %d", orphans)
	}
}

func TestCanModify(t *testing.T) {
	if CanModify(0, 0) {
		t.Fatal("anonymous actor must never pass the guard")
	}
	if CanModify(0, 1) {
		t.Fatal("anonymous actor must never pass the guard")
	}
	if CanModify(2, 1) {
		t.Fatal("non-owner must not pass the guard")
	}
	if !CanModify(1, 1) {
		t.Fatal("owner must pass the guard")
	}
}
