package integrationtests

import (
	bidding "auction-engine/internal/biddingService"
	model "auction-engine/internal/models"
	"auction-engine/internal/notifier"
	"auction-engine/internal/repository"
	"auction-engine/internal/server"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// testEnv is a fully wired engine behind the router
type testEnv struct {
	router  *gin.Engine
	service *bidding.BiddingService
	inbox   *notifier.Inbox
}

// SetupTestEnv wires the router, engine, dispatcher and inbox over the given store.
func SetupTestEnv(t *testing.T, repo repository.AuctionDB, listings ...model.Listing) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	inbox := notifier.NewInbox(20)
	dispatcher := notifier.NewDispatcher(inbox, 64, 2, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = dispatcher.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	service := bidding.NewBiddingService(repo, dispatcher)
	for _, l := range listings {
		require.NoError(t, service.RegisterListing(l))
	}

	return &testEnv{
		router:  server.SetupRouter(service, inbox, server.Options{}),
		service: service,
		inbox:   inbox,
	}
}

// SetupMemoryEnv is SetupTestEnv over the in-memory store
func SetupMemoryEnv(t *testing.T, listings ...model.Listing) *testEnv {
	t.Helper()
	return SetupTestEnv(t, repository.NewMemoryRepo(), listings...)
}

// SetupSQLiteEnv is SetupTestEnv over a private in-memory sqlite database
func SetupSQLiteEnv(t *testing.T, listings ...model.Listing) *testEnv {
	t.Helper()
	repo, err := repository.NewSQLRepo(fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return SetupTestEnv(t, repo, listings...)
}

// NewListing builds a listing closing closesIn from now
func NewListing(id string, startingPrice int64, closesIn time.Duration) model.Listing {
	return model.Listing{
		ListingID:     id,
		Title:         "title " + id,
		SellerID:      "seller-" + id,
		StartingPrice: decimal.NewFromInt(startingPrice),
		ClosesAt:      time.Now().Add(closesIn).UTC(),
	}
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case string:
		reqBody = []byte(v)
	case []byte:
		reqBody = v
	default:
		var err error
		reqBody, err = json.Marshal(v)
		require.NoError(t, err, "failed to marshal body")
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "failed to unmarshal response")
	}
	return resp, w
}

// PlaceBid posts a bid and returns the parsed envelope
func PlaceBid(t *testing.T, router *gin.Engine, listingID, bidderID, amount string) (map[string]any, int) {
	t.Helper()
	body := fmt.Sprintf(`{"bidderId":%q,"amount":%q}`, bidderID, amount)
	resp, w := ExecuteRequestAndParse(t, router, "POST", "/listings/"+listingID+"/bids", body)
	return resp, w.Code
}
