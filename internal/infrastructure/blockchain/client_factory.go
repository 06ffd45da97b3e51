package blockchain

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var beforeGetEVMClientWriteLockHook = func(string) {}

type contractKey struct {
	rpcURL  string
	address common.Address
}

// ClientFactory caches RPC clients by URL and ScholarshipFund bindings by
// (URL, address), so the periodic audit reuses one connection and one parsed ABI.
type ClientFactory struct {
	mu        sync.RWMutex
	clients   map[string]*EVMClient
	contracts map[contractKey]*ScholarshipContract
}

// NewClientFactory creates an empty factory
func NewClientFactory() *ClientFactory {
	return &ClientFactory{
		clients:   make(map[string]*EVMClient),
		contracts: make(map[contractKey]*ScholarshipContract),
	}
}

// GetEVMClient returns the cached client for rpcURL, dialing it on first use
func (f *ClientFactory) GetEVMClient(rpcURL string) (*EVMClient, error) {
	f.mu.RLock()
	client, ok := f.clients[rpcURL]
	f.mu.RUnlock()
	if ok {
		return client, nil
	}

	beforeGetEVMClientWriteLockHook(rpcURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	// another caller may have dialed while we waited
	if client, ok := f.clients[rpcURL]; ok {
		return client, nil
	}

	newClient, err := NewEVMClient(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create EVM client: %w", err)
	}
	f.clients[rpcURL] = newClient
	return newClient, nil
}

// GetScholarshipContract returns a binding of the contract at address over
// the client for rpcURL
func (f *ClientFactory) GetScholarshipContract(rpcURL string, address common.Address) (*ScholarshipContract, error) {
	key := contractKey{rpcURL: rpcURL, address: address}
	f.mu.RLock()
	contract, ok := f.contracts[key]
	f.mu.RUnlock()
	if ok {
		return contract, nil
	}

	client, err := f.GetEVMClient(rpcURL)
	if err != nil {
		return nil, err
	}
	bound, err := NewScholarshipContract(client, address)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.contracts[key]; ok {
		return existing, nil
	}
	f.contracts[key] = bound
	return bound, nil
}

// RegisterEVMClient injects or overrides the client for rpcURL and drops
// bindings made over the previous one
func (f *ClientFactory) RegisterEVMClient(rpcURL string, client *EVMClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clients[rpcURL] = client
	for key := range f.contracts {
		if key.rpcURL == rpcURL {
			delete(f.contracts, key)
		}
	}
}

// Close closes every cached client
func (f *ClientFactory) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for url, c := range f.clients {
		c.Close()
		delete(f.clients, url)
	}
	f.contracts = make(map[contractKey]*ScholarshipContract)
}
