// internal/adapters/rediscache/rediscache_test.go
package rediscache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"emailscope/internal/core/domain"
	"emailscope/internal/platform/errors"
	"emailscope/internal/testutil"
)

// Los tests contra un servidor real solo corren con EMAILSCOPE_TEST_REDIS_ADDR.
func testClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("EMAILSCOPE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("EMAILSCOPE_TEST_REDIS_ADDR not set")
	}

	c := NewClient(Options{Addr: addr, Prefix: "emailscope-test:" + uuid.NewString() + ":"})
	t.Cleanup(func() { _ = c.Close() })

	if err := c.Ping(context.Background()); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	return c
}

func TestStore_RoundTrip(t *testing.T) {
	c := testClient(t)
	store := NewStore[domain.CrawlPolicy](c, "policy")
	ctx := context.Background()

	_, ok, err := store.Load(ctx, "example.com")
	testutil.AssertNoError(t, err, "load missing")
	testutil.AssertFalse(t, ok, "miss")

	policy := domain.CrawlPolicy{
		Domain:     "example.com",
		Agent:      "EmailScopeBot/1.0",
		Robots:     "User-agent: *\nDisallow: /private\n",
		CrawlDelay: 2 * time.Second,
		FetchedAt:  time.Now().UTC().Truncate(time.Second),
		TTL:        time.Hour,
	}
	testutil.AssertNoError(t, store.Save(ctx, "example.com", policy, time.Minute), "save")

	got, ok, err := store.Load(ctx, "example.com")
	testutil.AssertNoError(t, err, "load")
	testutil.AssertTrue(t, ok, "hit")
	testutil.AssertEqual(t, got.CrawlDelay, policy.CrawlDelay, "crawl delay")
	testutil.AssertFalse(t, got.Allows("/private/team"), "robots rules survive the round trip")
	testutil.AssertTrue(t, got.FetchedAt.Equal(policy.FetchedAt), "fetched at")

	testutil.AssertNoError(t, store.Delete(ctx, "example.com"), "delete")
	_, ok, _ = store.Load(ctx, "example.com")
	testutil.AssertFalse(t, ok, "deleted")
}

func TestStore_Expiry(t *testing.T) {
	c := testClient(t)
	store := NewStore[domain.MailProfile](c, "profile")
	ctx := context.Background()

	profile := domain.MailProfile{Domain: "example.com", MXHosts: []string{"mx1.example.com"}, Resolved: true}
	testutil.AssertNoError(t, store.Save(ctx, "example.com", profile, 50*time.Millisecond), "save")

	testutil.Eventually(t, 2*time.Second, func() bool {
		_, ok, _ := store.Load(ctx, "example.com")
		return !ok
	}, "entry expires")
}

func TestStore_Namespaces(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()
	a := NewStore[string](c, "a")
	b := NewStore[string](c, "b")

	testutil.AssertNoError(t, a.Save(ctx, "k", "from a", 0), "save a")
	_, ok, err := b.Load(ctx, "k")
	testutil.AssertNoError(t, err, "load b")
	testutil.AssertFalse(t, ok, "namespaces do not collide")
}

func TestStore_Unreachable(t *testing.T) {
	c := NewClient(Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond})
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	store := NewStore[string](c, "x")
	_, ok, err := store.Load(ctx, "k")
	testutil.AssertFalse(t, ok, "no value")
	testutil.AssertTrue(t, errors.Is(err, errors.ErrConnectionFailed), "connection error")

	testutil.AssertTrue(t, errors.Is(c.Ping(ctx), errors.ErrConnectionFailed), "ping fails")
}

func TestStore_Key(t *testing.T) {
	c := NewClient(Options{Addr: "127.0.0.1:1", Prefix: "emailscope:"})
	defer c.Close()
	testutil.AssertEqual(t, NewStore[string](c, "policy").key("example.com"), "emailscope:policy:example.com", "key layout")
}
