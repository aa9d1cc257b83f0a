package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/blogd/database"
	"github.com/rpupo63/blogd/database/dbtest"
	"github.com/rpupo63/blogd/errs"
	"github.com/rpupo63/blogd/models"
)

func setup(t *testing.T, opts Options) (Services, *gorm.DB) {
	t.Helper()
	gdb := dbtest.Open(t)
	return New(database.New(gdb), opts), gdb
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestRegisterCreatesExactlyOneProfile(t *testing.T) {
	svc, gdb := setup(t, Options{})
	ctx := context.Background()

	for _, tc := range []struct {
		username string
		admin    bool
	}{{"alice", true}, {"bob", false}} {
		user, token, err := svc.Auth.Register(ctx, RegisterInput{
			Username:    tc.username,
			Password:    "pw",
			Email:       tc.username + "@example.com",
			FirstName:   "First",
			LastName:    "Last",
			IsBlogAdmin: tc.admin,
		})
		if err != nil {
			t.Fatalf("register %s: %v", tc.username, err)
		}
		if len(token.Key) != 40 {
			t.Fatalf("expected a 40 character token, got %q", token.Key)
		}

		var profiles []models.UserProfile
		gdb.Where("user_id = ?", user.ID).Find(&profiles)
		if len(profiles) != 1 {
			t.Fatalf("expected exactly one profile for %s, got %d", tc.username, len(profiles))
		}
		if profiles[0].IsBlogAdmin != tc.admin {
			t.Fatalf("expected is_blog_admin=%v for %s", tc.admin, tc.username)
		}
	}
}

func TestRegisterRejectsDuplicatesAndMissingFields(t *testing.T) {
	svc, gdb := setup(t, Options{})
	ctx := context.Background()
	in := RegisterInput{Username: "alice", Password: "pw", Email: "a@example.com", FirstName: "A", LastName: "L"}

	if _, _, err := svc.Auth.Register(ctx, in); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Auth.Register(ctx, in); !errs.IsConflict(err) {
		t.Fatalf("expected conflict for duplicate username, got %v", err)
	}

	for _, field := range []string{"email", "first_name", "last_name"} {
		bad := RegisterInput{Username: "carol-" + field, Password: "pw", Email: "c@example.com", FirstName: "C", LastName: "L"}
		switch field {
		case "email":
			bad.Email = ""
		case "first_name":
			bad.FirstName = ""
		case "last_name":
			bad.LastName = ""
		}
		_, _, err := svc.Auth.Register(ctx, bad)
		if !errs.IsValidation(err) {
			t.Fatalf("expected validation error without %s, got %v", field, err)
		}
		var apiErr *errs.ApiErr
		if !errors.As(err, &apiErr) || apiErr.Field != field {
			t.Fatalf("expected field %s, got %+v", field, apiErr)
		}
	}

	var users int64
	gdb.Model(&models.User{}).Count(&users)
	if users != 1 {
		t.Fatalf("failed registrations must not leave users behind, got %d", users)
	}
}

func TestLoginIssuesOneTokenAndResolves(t *testing.T) {
	svc, _ := setup(t, Options{})
	ctx := context.Background()
	_, registered, err := svc.Auth.Register(ctx, RegisterInput{Username: "alice", Password: "pw", Email: "a@example.com", FirstName: "A", LastName: "L", IsBlogAdmin: true})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, _, err := svc.Auth.Login(ctx, "alice", ""); !errs.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, _, _, err := svc.Auth.Login(ctx, "alice", "wrong"); !errs.IsInvalidCredentialsError(err) || !errs.IsUnauthenticated(err) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, _, err := svc.Auth.Login(ctx, "nobody", "pw"); !errs.IsInvalidCredentialsError(err) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}

	user, token, isAdmin, err := svc.Auth.Login(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !isAdmin || user.Username != "alice" {
		t.Fatalf("unexpected login result %v %v", user.Username, isAdmin)
	}
	if token.Key != registered.Key {
		t.Fatalf("login must reuse the existing token")
	}

	resolved, err := svc.Auth.Resolve(ctx, token.Key)
	if err != nil || resolved.ID != user.ID || !resolved.IsBlogAdmin() {
		t.Fatalf("resolve: %v %+v", err, resolved)
	}

	if err := svc.Auth.Logout(ctx, resolved, token.Key); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Auth.Resolve(ctx, token.Key); !errs.IsInvalidTokenError(err) {
		t.Fatalf("expected invalid token after logout, got %v", err)
	}
	if err := svc.Auth.Logout(ctx, nil, "whatever"); err != nil {
		t.Fatalf("anonymous logout should be a no-op, got %v", err)
	}
	if _, err := svc.Auth.Resolve(ctx, ""); !errs.IsMissingTokenError(err) {
		t.Fatalf("expected missing token, got %v", err)
	}
}

func TestExpiredTokensAreReplaced(t *testing.T) {
	now := time.Now().UTC()
	svc, _ := setup(t, Options{TokenTTL: time.Hour, Now: func() time.Time { return now }})
	ctx := context.Background()

	_, first, err := svc.Auth.Register(ctx, RegisterInput{Username: "alice", Password: "pw", Email: "a@example.com", FirstName: "A", LastName: "L"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	now = now.Add(2 * time.Hour)
	_, second, _, err := svc.Auth.Login(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if second.Key == first.Key {
		t.Fatalf("expected an expired token to be replaced")
	}
	if _, err := svc.Auth.Resolve(ctx, first.Key); !errs.IsInvalidTokenError(err) {
		t.Fatalf("old token should be gone, got %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := svc.Auth.Resolve(ctx, second.Key); !errs.IsExpiredTokenError(err) {
		t.Fatalf("expected expired token, got %v", err)
	}
}

func TestPurgeExpiredTokens(t *testing.T) {
	now := time.Now().UTC()
	svc, _ := setup(t, Options{TokenTTL: time.Hour, Now: func() time.Time { return now }})
	ctx := context.Background()

	_, token, err := svc.Auth.Register(ctx, RegisterInput{Username: "alice", Password: "pw", Email: "a@example.com", FirstName: "A", LastName: "L"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if removed, err := svc.Auth.PurgeExpired(ctx); err != nil || removed != 0 {
		t.Fatalf("fresh tokens must survive, removed %d err %v", removed, err)
	}

	now = now.Add(2 * time.Hour)
	if removed, err := svc.Auth.PurgeExpired(ctx); err != nil || removed != 1 {
		t.Fatalf("expected one expired token removed, got %d err %v", removed, err)
	}
	if _, err := svc.Auth.Resolve(ctx, token.Key); !errs.IsInvalidTokenError(err) {
		t.Fatalf("purged token should be unknown, got %v", err)
	}

	forever, _ := setup(t, Options{})
	if removed, err := forever.Auth.PurgeExpired(ctx); err != nil || removed != 0 {
		t.Fatalf("purge without a ttl should be a no-op, got %d err %v", removed, err)
	}
}

func TestCurrentUser(t *testing.T) {
	svc, gdb := setup(t, Options{})
	admin := dbtest.CreateUser(t, gdb, "alice", true)

	user, isAdmin, err := svc.Auth.CurrentUser(admin)
	if err != nil || user != admin || !isAdmin {
		t.Fatalf("unexpected current user %v %v %v", user, isAdmin, err)
	}
	if _, _, err := svc.Auth.CurrentUser(nil); !errs.IsUnauthenticated(err) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestOnlyAdminsCanManageContent(t *testing.T) {
	svc, gdb := setup(t, Options{})
	ctx := context.Background()
	bob := dbtest.CreateUser(t, gdb, "bob", false)
	alice := dbtest.CreateUser(t, gdb, "alice", true)
	post := dbtest.CreatePost(t, gdb, alice, "Hi", true, time.Now())
	comment := &models.Comment{PostID: post.ID, AuthorID: bob.ID, Content: "hello"}
	gdb.Create(comment)

	for _, actor := range []*models.User{bob, nil} {
		if _, err := svc.Categories.Create(ctx, actor, CategoryInput{Name: strPtr("Tech")}); !errs.IsForbidden(err) {
			t.Fatalf("create category: expected forbidden, got %v", err)
		}
		if _, err := svc.Posts.Create(ctx, actor, PostInput{Title: strPtr("x"), Content: strPtr("y")}); !errs.IsForbidden(err) {
			t.Fatalf("create post: expected forbidden, got %v", err)
		}
		if _, err := svc.Comments.Approve(ctx, actor, comment.ID); !errs.IsForbidden(err) {
			t.Fatalf("approve: expected forbidden, got %v", err)
		}
		if _, err := svc.Posts.ListOwnForAdmin(ctx, actor); !errs.IsForbidden(err) {
			t.Fatalf("admin listing: expected forbidden, got %v", err)
		}
	}

	if _, err := svc.Categories.Create(ctx, alice, CategoryInput{Name: strPtr("Tech")}); err != nil {
		t.Fatalf("admin create category: %v", err)
	}
	if _, err := svc.Comments.Approve(ctx, alice, comment.ID); err != nil {
		t.Fatalf("admin approve: %v", err)
	}
}

func TestPostMutationRequiresAuthorOrAdmin(t *testing.T) {
	svc, gdb := setup(t, Options{})
	ctx := context.Background()
	alice := dbtest.CreateUser(t, gdb, "alice", true)
	carol := dbtest.CreateUser(t, gdb, "carol", true)
	bob := dbtest.CreateUser(t, gdb, "bob", false)
	post := dbtest.CreatePost(t, gdb, alice, "Hi", false, time.Time{})

	if _, err := svc.Posts.Update(ctx, bob, post.ID, PostInput{Title: strPtr("Hacked")}); !errs.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := svc.Posts.Delete(ctx, bob, post.ID); !errs.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	updated, err := svc.Posts.Update(ctx, carol, post.ID, PostInput{Title: strPtr("Edited by admin")})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.Title != "Edited by admin" || updated.AuthorID != alice.ID || updated.Content != post.Content {
		t.Fatalf("partial update changed the wrong fields: %+v", updated)
	}

	if err := svc.Posts.Delete(ctx, alice, post.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if _, err := svc.Posts.Get(ctx, alice, post.ID); !errs.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestPublishFlowAndListPublished(t *testing.T) {
	svc, gdb := setup(t, Options{})
	ctx := context.Background()
	alice := dbtest.CreateUser(t, gdb, "alice", true)

	category, err := svc.Categories.Create(ctx, alice, CategoryInput{Name: strPtr("Tech")})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	post, err := svc.Posts.Create(ctx, alice, PostInput{Title: strPtr("Hi"), Content: strPtr("Hello"), Category: strPtr(category.ID.String())})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.Published || post.Slug != "hi" || post.Category == nil || post.Category.Name != "Tech" {
		t.Fatalf("unexpected new post %+v", post)
	}

	listed, err := svc.Posts.ListPublished(ctx, alice, PostFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("drafts must not be listed")
	}

	when := time.Now().Add(-time.Hour)
	if _, err := svc.Posts.Update(ctx, alice, post.ID, PostInput{Published: boolPtr(true), PublishedDate: &when}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	listed, err = svc.Posts.ListPublished(ctx, alice, PostFilters{Category: category.ID.String()})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != post.ID {
		t.Fatalf("expected the post exactly once, got %d", len(listed))
	}
	for _, p := range listed {
		if !p.Published {
			t.Fatalf("listPublished returned a draft")
		}
	}

	if _, err := svc.Posts.ListPublished(ctx, alice, PostFilters{Category: "nope"}); !errs.IsValidation(err) {
		t.Fatalf("expected validation error for a bad category id, got %v", err)
	}
	if _, err := svc.Posts.Create(ctx, alice, PostInput{Title: strPtr("x"), Content: strPtr("y"), Category: strPtr(uuid.NewString())}); !errs.IsValidation(err) {
		t.Fatalf("expected validation error for an unknown category, got %v", err)
	}
	if _, err := svc.Posts.Create(ctx, alice, PostInput{Content: strPtr("y")}); !errs.IsMissingRequiredFieldError(err) {
		t.Fatalf("expected missing title, got %v", err)
	}
}

func TestPublishingWithoutDateStampsNow(t *testing.T) {
	svc, gdb := setup(t, Options{})
	ctx := context.Background()
	alice := dbtest.CreateUser(t, gdb, "alice", true)

	post, err := svc.Posts.Create(ctx, alice, PostInput{Title: strPtr("Now"), Content: strPtr("c"), Published: boolPtr(true)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.PublishedDate == nil || time.Since(*post.PublishedDate) > time.Minute {
		t.Fatalf("expected published_date to be set, got %v", post.PublishedDate)
	}
}

func TestSlugsStayUnique(t *testing.T) {
	svc, gdb := setup(t, Options{})
	ctx := context.Background()
	alice := dbtest.CreateUser(t, gdb, "alice", true)

	first, err := svc.Posts.Create(ctx, alice, PostInput{Title: strPtr("Same Title"), Content: strPtr("c")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.Posts.Create(ctx, alice, PostInput{Title: strPtr("Same Title"), Content: strPtr("c")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Slug != "same-title" || second.Slug == first.Slug || !strings.HasPrefix(second.Slug, "same-title-") {
		t.Fatalf("unexpected slugs %q and %q", first.Slug, second.Slug)
	}

	if _, err := svc.Posts.Create(ctx, alice, PostInput{Title: strPtr("Other"), Content: strPtr("c"), Slug: strPtr("same-title")}); !errs.IsConflict(err) {
		t.Fatalf("expected conflict for a taken slug, got %v", err)
	}
}

func TestLatestIsCappedAndRecent(t *testing.T) {
	svc, gdb := setup(t, Options{})
	ctx := context.Background()
	alice := dbtest.CreateUser(t, gdb, "alice", true)

	now := time.Now()
	for i := 0; i < 8; i++ {
		dbtest.CreatePost(t, gdb, alice, "recent", true, now.Add(-time.Duration(i)*24*time.Hour))
	}
	old := dbtest.CreatePost(t, gdb, alice, "old", true, now.AddDate(0, 0, -31))
	draft := dbtest.CreatePost(t, gdb, alice, "draft", false, time.Time{})

	latest, err := svc.Posts.Latest(ctx, nil)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(latest) != 5 {
		t.Fatalf("expected 5 posts, got %d", len(latest))
	}
	cutoff := now.Add(-latestWindow)
	for _, p := range latest {
		if p.ID == old.ID || p.ID == draft.ID || !p.Published || p.PublishedDate.Before(cutoff) {
			t.Fatalf("latest returned an ineligible post %+v", p)
		}
	}
}

func TestAdminListingShowsOwnDraftsNewestFirst(t *testing.T) {
	svc, gdb := setup(t, Options{})
	ctx := context.Background()
	alice := dbtest.CreateUser(t, gdb, "alice", true)
	carol := dbtest.CreateUser(t, gdb, "carol", true)

	first := dbtest.CreatePost(t, gdb, alice, "first", false, time.Time{})
	time.Sleep(5 * time.Millisecond)
	second := dbtest.CreatePost(t, gdb, alice, "second", true, time.Now())
	dbtest.CreatePost(t, gdb, carol, "not mine", true, time.Now())

	posts, err := svc.Posts.ListOwnForAdmin(ctx, alice)
	if err != nil {
		t.Fatalf("list own: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != second.ID || posts[1].ID != first.ID {
		t.Fatalf("unexpected admin listing of %d posts", len(posts))
	}
}

func TestIsLikedAndLikeLifecycle(t *testing.T) {
	svc, gdb := setup(t, Options{})
	ctx := context.Background()
	alice := dbtest.CreateUser(t, gdb, "alice", true)
	bob := dbtest.CreateUser(t, gdb, "bob", false)
	post := dbtest.CreatePost(t, gdb, alice, "Hi", true, time.Now())

	if _, err := svc.Likes.Create(ctx, bob, post.ID); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, err := svc.Likes.Create(ctx, bob, post.ID); !errs.IsConflict(err) {
		t.Fatalf("expected conflict on second like, got %v", err)
	}

	seenByBob, err := svc.Posts.Get(ctx, bob, post.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !seenByBob.IsLiked || seenByBob.LikesCount != 1 {
		t.Fatalf("expected bob to see his like, got %+v", seenByBob)
	}
	seenByAlice, _ := svc.Posts.Get(ctx, alice, post.ID)
	if seenByAlice.IsLiked {
		t.Fatalf("alice has not liked the post")
	}
	anonymous, _ := svc.Posts.Get(ctx, nil, post.ID)
	if anonymous.IsLiked || anonymous.LikesCount != 1 {
		t.Fatalf("anonymous callers never see is_liked")
	}

	if err := svc.Likes.Delete(ctx, bob, post.ID); err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if err := svc.Likes.Delete(ctx, bob, post.ID); !errs.IsNotFound(err) {
		t.Fatalf("expected not found on second unlike, got %v", err)
	}
	if _, err := svc.Likes.Create(ctx, bob, uuid.New()); !errs.IsNotFound(err) {
		t.Fatalf("liking a missing post should be not found, got %v", err)
	}

	after, _ := svc.Posts.Get(ctx, bob, post.ID)
	if after.IsLiked || after.LikesCount != 0 {
		t.Fatalf("expected like removed, got %+v", after)
	}
}

func TestCommentsCountOnlyApproved(t *testing.T) {
	svc, gdb := setup(t, Options{})
	ctx := context.Background()
	alice := dbtest.CreateUser(t, gdb, "alice", true)
	bob := dbtest.CreateUser(t, gdb, "bob", false)
	post := dbtest.CreatePost(t, gdb, alice, "Hi", true, time.Now())

	comment, err := svc.Comments.Create(ctx, bob, post.ID, "first!")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if comment.Approved {
		t.Fatalf("new comments must start unapproved")
	}

	countOf := func() int64 {
		p, err := svc.Posts.Get(ctx, bob, post.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		return p.CommentsCount
	}

	if got := countOf(); got != 0 {
		t.Fatalf("pending comments must not be counted, got %d", got)
	}
	listed, err := svc.Comments.ListApprovedForPost(ctx, post.ID)
	if err != nil || len(listed) != 0 {
		t.Fatalf("pending comments must not be listed, got %d %v", len(listed), err)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.Comments.Approve(ctx, alice, comment.ID); err != nil {
			t.Fatalf("approve #%d: %v", i+1, err)
		}
		if got := countOf(); got != 1 {
			t.Fatalf("expected count 1 after approval #%d, got %d", i+1, got)
		}
	}

	listed, err = svc.Comments.ListApprovedForPost(ctx, post.ID)
	if err != nil || len(listed) != 1 || listed[0].Author == nil || listed[0].Author.Username != "bob" {
		t.Fatalf("expected bob's approved comment, got %d %v", len(listed), err)
	}

	if _, err := svc.Comments.ListApprovedForPost(ctx, uuid.New()); !errs.IsNotFound(err) {
		t.Fatalf("expected not found for a missing post, got %v", err)
	}
	if _, err := svc.Comments.Create(ctx, bob, uuid.New(), "hi"); !errs.IsNotFound(err) {
		t.Fatalf("expected not found for a missing post, got %v", err)
	}
}

func TestCommentMutationRules(t *testing.T) {
	svc, gdb := setup(t, Options{})
	ctx := context.Background()
	alice := dbtest.CreateUser(t, gdb, "alice", true)
	bob := dbtest.CreateUser(t, gdb, "bob", false)
	dave := dbtest.CreateUser(t, gdb, "dave", false)
	post := dbtest.CreatePost(t, gdb, alice, "Hi", true, time.Now())

	comment, err := svc.Comments.Create(ctx, bob, post.ID, "hello")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if _, err := svc.Comments.Update(ctx, dave, comment.ID, "vandalised"); !errs.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	updated, err := svc.Comments.Update(ctx, bob, comment.ID, "hello again")
	if err != nil || updated.Content != "hello again" || updated.Approved {
		t.Fatalf("author update: %+v %v", updated, err)
	}
	if err := svc.Comments.Delete(ctx, dave, comment.ID); !errs.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := svc.Comments.Delete(ctx, alice, comment.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := svc.Comments.Get(ctx, comment.ID); !errs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDashboardByRole(t *testing.T) {
	svc, gdb := setup(t, Options{})
	ctx := context.Background()
	alice := dbtest.CreateUser(t, gdb, "alice", true)
	bob := dbtest.CreateUser(t, gdb, "bob", false)
	published := dbtest.CreatePost(t, gdb, alice, "live", true, time.Now())
	dbtest.CreatePost(t, gdb, alice, "draft", false, time.Time{})

	c1, _ := svc.Comments.Create(ctx, bob, published.ID, "one")
	if _, err := svc.Comments.Create(ctx, bob, published.ID, "two"); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if _, err := svc.Comments.Approve(ctx, alice, c1.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := svc.Likes.Create(ctx, bob, published.ID); err != nil {
		t.Fatalf("like: %v", err)
	}

	admin, err := svc.Dashboard.Summarize(ctx, alice)
	if err != nil {
		t.Fatalf("admin dashboard: %v", err)
	}
	if !admin.IsAdmin || *admin.TotalPosts != 2 || *admin.PublishedPosts != 1 || *admin.TotalComments != 2 || *admin.PendingComments != 1 {
		t.Fatalf("unexpected admin stats %+v", admin)
	}
	if admin.LikedPosts != nil || admin.CommentsMade != nil {
		t.Fatalf("admin stats must not carry member counters")
	}

	member, err := svc.Dashboard.Summarize(ctx, bob)
	if err != nil {
		t.Fatalf("member dashboard: %v", err)
	}
	if member.IsAdmin || *member.LikedPosts != 1 || *member.CommentsMade != 2 || member.TotalPosts != nil {
		t.Fatalf("unexpected member stats %+v", member)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	svc, gdb := setup(t, Options{})
	ctx := context.Background()
	alice := dbtest.CreateUser(t, gdb, "alice", true)
	bob := dbtest.CreateUser(t, gdb, "bob", false)

	if _, err := svc.Categories.Create(ctx, alice, CategoryInput{}); !errs.IsMissingRequiredFieldError(err) {
		t.Fatalf("expected missing name, got %v", err)
	}
	tech, err := svc.Categories.Create(ctx, alice, CategoryInput{Name: strPtr("Tech")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Categories.Create(ctx, alice, CategoryInput{Name: strPtr("Art")}); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := svc.Categories.List(ctx)
	if err != nil || len(all) != 2 || all[0].Name != "Art" {
		t.Fatalf("expected categories ordered by name, got %v %v", all, err)
	}

	if _, err := svc.Categories.Update(ctx, bob, tech.ID, CategoryInput{Name: strPtr("Nope")}); !errs.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	updated, err := svc.Categories.Update(ctx, alice, tech.ID, CategoryInput{Description: strPtr("All things tech")})
	if err != nil || updated.Name != "Tech" || updated.Description == nil {
		t.Fatalf("partial update: %+v %v", updated, err)
	}

	post, err := svc.Posts.Create(ctx, alice, PostInput{Title: strPtr("Hi"), Content: strPtr("c"), Category: strPtr(tech.ID.String())})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if err := svc.Categories.Delete(ctx, bob, tech.ID); !errs.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := svc.Categories.Delete(ctx, alice, tech.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Categories.Get(ctx, tech.ID); !errs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.Categories.Delete(ctx, alice, tech.ID); !errs.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}

	reloaded, err := svc.Posts.Get(ctx, alice, post.ID)
	if err != nil || reloaded.Category != nil {
		t.Fatalf("post should survive without a category: %+v %v", reloaded, err)
	}
}

type memoryImages struct {
	objects map[string][]byte
	failPut bool
}

func (m *memoryImages) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	if m.failPut {
		return "", errors.New("bucket unavailable")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.objects[key] = data
	return "https://cdn.example.com/" + key, nil
}

func (m *memoryImages) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryImages) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, "https://cdn.example.com/")
	return key, ok
}

func TestSetFeaturedImage(t *testing.T) {
	images := &memoryImages{objects: map[string][]byte{}}
	svc, gdb := setup(t, Options{Images: images, MaxImageBytes: 16})
	ctx := context.Background()
	alice := dbtest.CreateUser(t, gdb, "alice", true)
	bob := dbtest.CreateUser(t, gdb, "bob", false)
	post := dbtest.CreatePost(t, gdb, alice, "Hi", true, time.Now())

	if _, err := svc.Posts.SetFeaturedImage(ctx, bob, post.ID, "a.png", "image/png", strings.NewReader("png"), 3); !errs.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.Posts.SetFeaturedImage(ctx, alice, post.ID, "a.txt", "text/plain", strings.NewReader("txt"), 3); !errs.IsInvalidFieldError(err) {
		t.Fatalf("expected invalid field, got %v", err)
	}
	if _, err := svc.Posts.SetFeaturedImage(ctx, alice, post.ID, "a.png", "image/png", strings.NewReader(strings.Repeat("x", 32)), 32); !errs.IsMaxBodySizeExceededError(err) {
		t.Fatalf("expected size error, got %v", err)
	}

	updated, err := svc.Posts.SetFeaturedImage(ctx, alice, post.ID, "Photo.PNG", "image/png", strings.NewReader("png"), 3)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if updated.FeaturedImage == nil || !strings.HasPrefix(*updated.FeaturedImage, "https://cdn.example.com/posts/"+post.ID.String()+"/") || !strings.HasSuffix(*updated.FeaturedImage, ".png") {
		t.Fatalf("unexpected featured image %v", updated.FeaturedImage)
	}
	if len(images.objects) != 1 {
		t.Fatalf("expected one stored object, got %d", len(images.objects))
	}

	replaced, err := svc.Posts.SetFeaturedImage(ctx, alice, post.ID, "next.jpg", "image/jpeg", strings.NewReader("jpg"), 3)
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if len(images.objects) != 1 {
		t.Fatalf("expected the replaced image to be deleted, %d objects stored", len(images.objects))
	}
	newKey, _ := images.KeyFromURL(*replaced.FeaturedImage)
	if _, ok := images.objects[newKey]; !ok {
		t.Fatalf("expected the new image %s to be kept", newKey)
	}

	external := "https://elsewhere.example.org/cover.png"
	if _, err := svc.Posts.Update(ctx, alice, post.ID, PostInput{FeaturedImage: &external}); err != nil {
		t.Fatalf("set external image: %v", err)
	}
	if _, err := svc.Posts.SetFeaturedImage(ctx, alice, post.ID, "third.png", "image/png", strings.NewReader("png"), 3); err != nil {
		t.Fatalf("third upload: %v", err)
	}
	if len(images.objects) != 2 {
		t.Fatalf("images the store did not produce must be left alone, %d objects stored", len(images.objects))
	}
}

func TestSetFeaturedImageWithoutStore(t *testing.T) {
	svc, gdb := setup(t, Options{})
	alice := dbtest.CreateUser(t, gdb, "alice", true)
	post := dbtest.CreatePost(t, gdb, alice, "Hi", true, time.Now())

	_, err := svc.Posts.SetFeaturedImage(context.Background(), alice, post.ID, "a.png", "image/png", strings.NewReader("png"), 3)
	if errs.StatusCode(err) != 503 {
		t.Fatalf("expected 503, got %v", err)
	}
}

func TestReadsAfterWritesSkipTheReplica(t *testing.T) {
	gdb := dbtest.OpenWithLaggingReplica(t)
	svc := New(database.New(gdb), Options{})
	ctx := context.Background()

	alice, token, err := svc.Auth.Register(ctx, RegisterInput{Username: "alice", Password: "pw", Email: "a@example.com", FirstName: "A", LastName: "L", IsBlogAdmin: true})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, _, err := svc.Auth.Login(ctx, "alice", "pw"); err != nil {
		t.Fatalf("login right after register: %v", err)
	}
	actor, err := svc.Auth.Resolve(ctx, token.Key)
	if err != nil {
		t.Fatalf("resolve right after register: %v", err)
	}
	if actor.ID != alice.ID || !actor.IsBlogAdmin() {
		t.Fatalf("expected alice with her admin profile, got %+v", actor)
	}

	category, err := svc.Categories.Create(ctx, actor, CategoryInput{Name: strPtr("Tech")})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	post, err := svc.Posts.Create(ctx, actor, PostInput{Title: strPtr("Hi"), Content: strPtr("Hello"), Category: strPtr(category.ID.String())})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.Author == nil || post.Author.ID != alice.ID || post.Category == nil {
		t.Fatalf("expected author and category on the new post, got %+v", post)
	}
	if _, err := svc.Posts.Update(ctx, actor, post.ID, PostInput{Published: boolPtr(true)}); err != nil {
		t.Fatalf("update post: %v", err)
	}

	comment, err := svc.Comments.Create(ctx, actor, post.ID, "First")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if _, err := svc.Comments.Approve(ctx, actor, comment.ID); err != nil {
		t.Fatalf("approve comment: %v", err)
	}

	// Listings may lag behind and read from the replica.
	posts, err := svc.Posts.ListPublished(ctx, actor, PostFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("expected the listing to come from the empty replica, got %d posts", len(posts))
	}
}
