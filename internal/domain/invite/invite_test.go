package invite_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/edithlab/growthboard/internal/domain/fault"
	"github.com/edithlab/growthboard/internal/domain/invite"
	. "github.com/smartystreets/goconvey/convey"
)

// memoryIssuer is an in-memory unique-constraint table.
type memoryIssuer struct {
	mu     sync.Mutex
	issued map[string]struct{}
}

func newMemoryIssuer() *memoryIssuer {
	return &memoryIssuer{issued: make(map[string]struct{})}
}

func (m *memoryIssuer) ClaimCode(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.issued[code]; exists {
		return fmt.Errorf("code %s: %w", code, fault.ErrConflict)
	}
	m.issued[code] = struct{}{}
	return nil
}

// collidingIssuer rejects the first n claims as conflicts.
type collidingIssuer struct {
	remaining int
	claims    int
}

func (c *collidingIssuer) ClaimCode(context.Context, string) error {
	c.claims++
	if c.remaining > 0 {
		c.remaining--
		return fault.ErrConflict
	}
	return nil
}

func TestNewCode(t *testing.T) {
	Convey("Given the code generator", t, func() {
		Convey("When drawing a candidate", func() {
			code, err := invite.NewCode()

			Convey("Then it is 6 uppercase hex characters", func() {
				So(err, ShouldBeNil)
				So(code, ShouldHaveLength, invite.CodeLength)
				for _, r := range code {
					So(r, ShouldBeIn, []rune("0123456789ABCDEF"))
				}
			})
		})
	})
}

func TestAllocate(t *testing.T) {
	ctx := context.Background()

	Convey("Given an allocator over an in-memory issuer", t, func() {
		issuer := newMemoryIssuer()
		alloc := invite.NewAllocator(issuer)

		Convey("When allocating concurrently", func() {
			const n = 2000
			codes := make(chan string, n)
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					code, err := alloc.Allocate(ctx)
					if err == nil {
						codes <- code
					}
				}()
			}
			wg.Wait()
			close(codes)

			Convey("Then every issued code is distinct", func() {
				seen := make(map[string]struct{})
				for code := range codes {
					_, dup := seen[code]
					So(dup, ShouldBeFalse)
					seen[code] = struct{}{}
				}
				So(len(seen), ShouldEqual, n)
			})
		})
	})

	Convey("Given an issuer that collides a few times", t, func() {
		issuer := &collidingIssuer{remaining: 3}
		alloc := invite.NewAllocator(issuer)

		Convey("When allocating", func() {
			code, err := alloc.Allocate(ctx)

			Convey("Then retries absorb the collisions", func() {
				So(err, ShouldBeNil)
				So(code, ShouldHaveLength, invite.CodeLength)
				So(issuer.claims, ShouldEqual, 4)
			})
		})
	})

	Convey("Given an issuer that always collides", t, func() {
		issuer := &collidingIssuer{remaining: 1 << 30}
		alloc := invite.NewAllocator(issuer, invite.WithMaxAttempts(3))

		Convey("When allocating", func() {
			_, err := alloc.Allocate(ctx)

			Convey("Then allocation fails loudly after the ceiling", func() {
				So(errors.Is(err, invite.ErrAllocationExhausted), ShouldBeTrue)
				So(errors.Is(err, fault.ErrConflict), ShouldBeTrue)
				So(issuer.claims, ShouldEqual, 3)
			})
		})
	})

	Convey("Given an issuer with a broken backend", t, func() {
		alloc := invite.NewAllocator(brokenIssuer{})

		Convey("When allocating", func() {
			_, err := alloc.Allocate(ctx)

			Convey("Then the failure is a persistence error, not a retry", func() {
				So(errors.Is(err, fault.ErrPersistence), ShouldBeTrue)
			})
		})
	})
}

type brokenIssuer struct{}

func (brokenIssuer) ClaimCode(context.Context, string) error {
	return errors.New("disk on fire")
}
