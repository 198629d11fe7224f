package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// FakeAPI is an in-process stand-in for the Rick and Morty REST API.
//
// It serves generated fixtures for /character, /location and /episode with
// the same pagination, search and 404 conventions as the real service. Tests
// can force failures with FailWith and Malformed, and inspect traffic with
// Requests.
type FakeAPI struct {
	Server   *httptest.Server
	PageSize int

	mu        sync.Mutex
	resources map[string][]map[string]any
	requests  map[string]int
	failCode  int
	malformed bool
}

// NewFakeAPI starts a fake API with the given number of characters,
// locations and episodes. The server is closed when the test ends.
func NewFakeAPI(t testing.TB, characters, locations, episodes int) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		PageSize: 20,
		requests: make(map[string]int),
		resources: map[string][]map[string]any{
			"character": make([]map[string]any, 0, characters),
			"location":  make([]map[string]any, 0, locations),
			"episode":   make([]map[string]any, 0, episodes),
		},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)

	for i := 1; i <= characters; i++ {
		f.resources["character"] = append(f.resources["character"], f.character(i))
	}
	for i := 1; i <= locations; i++ {
		f.resources["location"] = append(f.resources["location"], f.location(i))
	}
	for i := 1; i <= episodes; i++ {
		f.resources["episode"] = append(f.resources["episode"], f.episode(i))
	}
	return f
}

// URL returns the API root to pass to the client.
func (f *FakeAPI) URL() string {
	return f.Server.URL + "/api"
}

// FailWith makes every subsequent request answer with status. 0 restores
// normal behavior.
func (f *FakeAPI) FailWith(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failCode = status
}

// Malformed makes every subsequent 200 response carry invalid JSON.
func (f *FakeAPI) Malformed(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.malformed = on
}

// Set replaces the fixture for resource/id with item (it is added if absent).
func (f *FakeAPI) Set(resource string, id int, item map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item["id"] = id
	items := f.resources[resource]
	for i, existing := range items {
		if existing["id"] == id {
			items[i] = item
			return
		}
	}
	f.resources[resource] = append(items, item)
}

// Item returns a copy of the fixture for resource/id.
func (f *FakeAPI) Item(resource string, id int) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.resources[resource] {
		if item["id"] == id {
			cp := make(map[string]any, len(item))
			for k, v := range item {
				cp[k] = v
			}
			return cp
		}
	}
	return nil
}

// Requests returns how many requests hit path (e.g. "/api/character").
func (f *FakeAPI) Requests(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[path]
}

// TotalRequests returns the number of requests served so far.
func (f *FakeAPI) TotalRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.requests {
		n += c
	}
	return n
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests[r.URL.Path]++

	if f.failCode != 0 {
		writeJSON(w, f.failCode, map[string]any{"error": http.StatusText(f.failCode)})
		return
	}

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api"), "/"), "/")
	items, ok := f.resources[parts[0]]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "There is nothing here"})
		return
	}

	var body any
	switch len(parts) {
	case 1:
		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			n, err := strconv.Atoi(p)
			if err != nil || n < 1 {
				writeJSON(w, http.StatusNotFound, map[string]any{"error": "There is nothing here"})
				return
			}
			page = n
		}
		if name := r.URL.Query().Get("name"); name != "" {
			items = filterByName(items, name)
		}
		start := (page - 1) * f.PageSize
		if start >= len(items) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "There is nothing here"})
			return
		}
		end := min(start+f.PageSize, len(items))
		body = f.page(parts[0], items, page, start, end)
	case 2:
		id, err := strconv.Atoi(parts[1])
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Hey! you must provide an id"})
			return
		}
		var found map[string]any
		for _, item := range items {
			if item["id"] == id {
				found = item
				break
			}
		}
		if found == nil {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": strings.ToUpper(parts[0][:1]) + parts[0][1:] + " not found"})
			return
		}
		body = found
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "There is nothing here"})
		return
	}

	if f.malformed {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"info": {"count": 1, "results": [`)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (f *FakeAPI) page(resource string, items []map[string]any, page, start, end int) map[string]any {
	pages := (len(items) + f.PageSize - 1) / f.PageSize
	var next, prev any
	if page < pages {
		next = fmt.Sprintf("%s/%s?page=%d", f.URL(), resource, page+1)
	}
	if page > 1 {
		prev = fmt.Sprintf("%s/%s?page=%d", f.URL(), resource, page-1)
	}
	return map[string]any{
		"info": map[string]any{
			"count": len(items),
			"pages": pages,
			"next":  next,
			"prev":  prev,
		},
		"results": items[start:end],
	}
}

func (f *FakeAPI) character(id int) map[string]any {
	status := []string{"Alive", "Dead", "unknown"}[id%3]
	gender := []string{"Male", "Female", "Genderless", "unknown"}[id%4]
	return map[string]any{
		"id":       id,
		"name":     fmt.Sprintf("Character %d", id),
		"status":   status,
		"species":  "Human",
		"type":     "",
		"gender":   gender,
		"origin":   map[string]any{"name": "Earth (C-137)", "url": f.URL() + "/location/1"},
		"location": map[string]any{"name": "unknown", "url": ""},
		"image":    fmt.Sprintf("%s/character/avatar/%d.jpeg", f.URL(), id),
		"episode":  []string{f.URL() + "/episode/1"},
		"url":      fmt.Sprintf("%s/character/%d", f.URL(), id),
		"created":  "2017-11-04T18:48:46.250Z",
	}
}

func (f *FakeAPI) location(id int) map[string]any {
	return map[string]any{
		"id":        id,
		"name":      fmt.Sprintf("Location %d", id),
		"type":      "Planet",
		"dimension": "Dimension C-137",
		"residents": []string{f.URL() + "/character/1"},
		"url":       fmt.Sprintf("%s/location/%d", f.URL(), id),
		"created":   "2017-11-10T12:42:04.162Z",
	}
}

func (f *FakeAPI) episode(id int) map[string]any {
	return map[string]any{
		"id":         id,
		"name":       fmt.Sprintf("Episode %d", id),
		"air_date":   "December 2, 2013",
		"episode":    fmt.Sprintf("S01E%02d", id),
		"characters": []string{f.URL() + "/character/1"},
		"url":        fmt.Sprintf("%s/episode/%d", f.URL(), id),
		"created":    "2017-11-10T12:56:33.798Z",
	}
}

func filterByName(items []map[string]any, name string) []map[string]any {
	needle := strings.ToLower(name)
	var out []map[string]any
	for _, item := range items {
		if n, ok := item["name"].(string); ok && strings.Contains(strings.ToLower(n), needle) {
			out = append(out, item)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
