package problem_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	httpclient "codebench/internal/cli/http"
	"codebench/internal/common/cache"
	"codebench/internal/testutil"
	"codebench/internal/workbench/problem"
	pkgerrors "codebench/pkg/errors"

	"github.com/alicebob/miniredis/v2"
)

const twoSum = `{"id":"two-sum","title":"Two Sum","difficulty":"easy","startcode":[
	{"language":"c++","initialcode":"class Solution {};"},
	{"language":"java","initialcode":"class Solution {}"},
	{"language":"javascript","initialcode":"var twoSum = function() {};"}
]}`

func newProblemServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/problem/problemById/two-sum":
			_, _ = io.WriteString(w, twoSum)
		case "/problem/problemById/broken":
			_, _ = io.WriteString(w, `{"startcode":"nope"}`)
		case "/problem/problemById/down":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestLoadDecodesStartCode(t *testing.T) {
	var hits atomic.Int32
	server := newProblemServer(t, &hits)
	loader := problem.NewLoader(httpclient.New(server.URL, time.Second, nil), problem.Config{})

	p, err := loader.Load(context.Background(), "two-sum")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, p.Title, "Two Sum")
	testutil.AssertEqual(t, len(p.StartCode), 3)
	testutil.AssertEqual(t, p.StartCode[0].Language, "c++")

	_, err = loader.Load(context.Background(), "two-sum")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, hits.Load(), int32(1))
}

func TestLoadErrors(t *testing.T) {
	var hits atomic.Int32
	server := newProblemServer(t, &hits)
	loader := problem.NewLoader(httpclient.New(server.URL, time.Second, nil), problem.Config{})
	ctx := context.Background()

	tests := []struct {
		id   string
		code pkgerrors.ErrorCode
	}{
		{id: "missing", code: pkgerrors.ProblemNotFound},
		{id: "down", code: pkgerrors.ProblemLoadFailed},
		{id: "broken", code: pkgerrors.StartCodeMalformed},
		{id: "", code: pkgerrors.InvalidParams},
	}
	for _, tt := range tests {
		_, err := loader.Load(ctx, tt.id)
		testutil.AssertEqual(t, pkgerrors.GetCode(err), tt.code)
	}
}

func TestLoadUsesRemoteTier(t *testing.T) {
	var hits atomic.Int32
	server := newProblemServer(t, &hits)
	mr := miniredis.RunT(t)
	remote, err := cache.NewRedisCacheWithConfig(&cache.RedisConfig{Addr: mr.Addr()})
	testutil.AssertNoError(t, err)
	defer func() { _ = remote.Close() }()

	ctx := context.Background()
	first := problem.NewLoader(httpclient.New(server.URL, time.Second, nil), problem.Config{Remote: remote})
	_, err = first.Load(ctx, "two-sum")
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, mr.Exists("codebench:problem:two-sum"), "problem should be stored in redis")

	second := problem.NewLoader(httpclient.New(server.URL, time.Second, nil), problem.Config{Remote: remote})
	p, err := second.Load(ctx, "two-sum")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, p.ID, "two-sum")
	testutil.AssertEqual(t, hits.Load(), int32(1))

	second.Invalidate(ctx, "two-sum")
	testutil.AssertFalse(t, mr.Exists("codebench:problem:two-sum"), "invalidate should clear redis")
	_, err = second.Load(ctx, "two-sum")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, hits.Load(), int32(2))
}
