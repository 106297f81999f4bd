package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"ar-model-dashboard/client"
	"ar-model-dashboard/models"
)

// session is a loaded status cache bound to the backend
type session struct {
	api   *client.APIClient
	cache *client.StatusCache
	close func() error
}

// openSession loads the local cache selected by the global flags
func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	api := client.NewAPIClient(opts.APIURL)

	var (
		store   client.LocalStore
		closeFn = func() error { return nil }
	)
	if opts.RedisAddr != "" {
		redisStore := client.NewRedisStore(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		store = redisStore
		closeFn = redisStore.Close
	} else {
		store = client.NewFileStore(opts.CacheFile)
	}

	cache := client.NewStatusCache(store, api)
	if err := cache.Load(ctx); err != nil {
		closeFn()
		return nil, err
	}
	return &session{api: api, cache: cache, close: closeFn}, nil
}

// finish waits for background writes before the process exits
func (s *session) finish() error {
	s.cache.Wait()
	return s.close()
}

func parseVariantID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid variant id %q: expected a positive integer", arg)
	}
	return id, nil
}

// writeStatuses prints statuses ordered by variant id
func writeStatuses(w io.Writer, format string, statuses []models.ClientVariantStatus) error {
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].VariantID < statuses[j].VariantID })

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(statuses)
	}

	for _, s := range statuses {
		flag := "-"
		switch {
		case s.HumanVerified:
			flag = "verified"
		case s.ManualIncorrect:
			flag = "incorrect"
		}
		notes := ""
		if s.Notes != nil {
			notes = *s.Notes
		}
		fmt.Fprintf(w, "%d\tios=%s\tandroid=%s\t%s\t%s\n", s.VariantID, s.IOSStatus, s.AndroidStatus, flag, notes)
	}
	return nil
}
