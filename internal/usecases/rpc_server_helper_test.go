package usecases

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newSafeHTTPServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("skip: httptest server unavailable in this environment: %v", r)
		}
	}()
	return httptest.NewServer(handler)
}

// newRevertingRPCServer is a JSON-RPC node on chain 31337 whose eth_call
// always reverts with revertDataHex
func newRevertingRPCServer(t *testing.T, revertDataHex string) *httptest.Server {
	t.Helper()
	return newSafeHTTPServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&req)

		res := map[string]interface{}{"jsonrpc": "2.0", "id": req["id"]}
		switch req["method"] {
		case "eth_chainId":
			res["result"] = "0x7a69"
		case "eth_call":
			res["error"] = map[string]interface{}{
				"code":    3,
				"message": "execution reverted",
				"data":    revertDataHex,
			}
		default:
			res["result"] = "0x0"
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}))
}
