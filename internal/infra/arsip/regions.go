package arsip

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/arsipak/admin-bff-go/internal/domain"
)

// maxRegionPages caps pagination-following so a misbehaving upstream
// `next` link cannot loop forever. No real level has this many pages.
const maxRegionPages = 500

// ListRegions fetches one page of children for (level, parentCode).
// Implements port.RegionAPI.
func (c *Client) ListRegions(ctx context.Context, token string, level int, parentCode string, page int) ([]domain.Region, bool, error) {
	ctx, span := tracer.Start(ctx, "Arsip.ListRegions")
	defer span.End()
	span.SetAttributes(
		attribute.Int("region.level", level),
		attribute.String("region.parent_code", parentCode),
		attribute.Int("region.page", page),
	)

	q := url.Values{}
	q.Set("level", strconv.Itoa(level))
	if parentCode != "" {
		q.Set("parent_code", parentCode)
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	path := "/wilayah/?" + q.Encode()

	var (
		regions []domain.Region
		hasNext bool
	)
	err := c.execute(ctx, "wilayah", func() error {
		raw, err := c.do(ctx, http.MethodGet, path, token, nil)
		if err != nil {
			return err
		}
		items, _, next, err := decodeList[domain.Region](raw)
		if err != nil {
			return err
		}
		regions, hasNext = items, next
		c.metrics.IncrRegionPage()
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return regions, hasNext, nil
}

// FetchRegionLevel follows pagination to exhaustion and returns every child
// of (level, parentCode). Page fetches pass through the bulkhead so a burst
// of pickers cannot monopolize upstream connections.
func (c *Client) FetchRegionLevel(ctx context.Context, token string, level int, parentCode string) ([]domain.Region, error) {
	ctx, span := tracer.Start(ctx, "Arsip.FetchRegionLevel")
	defer span.End()
	span.SetAttributes(
		attribute.Int("region.level", level),
		attribute.String("region.parent_code", parentCode),
	)

	var all []domain.Region
	for page := 1; page <= maxRegionPages; page++ {
		if err := c.bulkhead.Acquire(ctx); err != nil {
			return nil, err
		}
		regions, hasNext, err := c.ListRegions(ctx, token, level, parentCode, page)
		c.bulkhead.Release()
		if err != nil {
			return nil, err
		}
		all = append(all, regions...)
		if !hasNext {
			return all, nil
		}
	}
	return nil, &domain.ErrUpstream{
		Op:      "GET /wilayah/",
		Status:  http.StatusBadGateway,
		Message: fmt.Sprintf("pagination did not terminate after %d pages", maxRegionPages),
	}
}

// ResolveRegionPath returns the full province→village chain ending at the
// region with the given id.
func (c *Client) ResolveRegionPath(ctx context.Context, token string, id int64) (domain.RegionPath, error) {
	ctx, span := tracer.Start(ctx, "Arsip.ResolveRegionPath")
	defer span.End()
	span.SetAttributes(attribute.Int64("region.id", id))

	path := fmt.Sprintf("/wilayah/path/%d/", id)

	var chain domain.RegionPath
	err := c.execute(ctx, "wilayah", func() error {
		raw, err := c.do(ctx, http.MethodGet, path, token, nil)
		if err != nil {
			return err
		}
		items, _, _, err := decodeList[domain.Region](raw)
		if err != nil {
			return err
		}
		chain = domain.RegionPath(items)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !chain.Valid() {
		return nil, &domain.ErrUpstream{
			Op:      "GET " + path,
			Status:  http.StatusBadGateway,
			Message: "malformed region path: broken parent chain",
		}
	}
	return chain, nil
}
