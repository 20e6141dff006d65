package push

import (
	"context"
	"sync"
)

// MemoryProvider is an in-process Provider for development and testing.
// Events are emitted explicitly via the Emit methods.
type MemoryProvider struct {
	mu            sync.Mutex
	permission    Permission
	permissionErr error
	token         string
	tokenErr      error
	launch        *Message
	handlers      Handlers
	listening     bool
}

// NewMemoryProvider creates a provider with permission granted and no token.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{permission: PermissionGranted}
}

// SetPermission sets the answer RequestPermission will give.
func (p *MemoryProvider) SetPermission(perm Permission, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.permission = perm
	p.permissionErr = err
}

// SetToken sets the token returned by Token.
func (p *MemoryProvider) SetToken(token string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = token
	p.tokenErr = err
}

// SetLaunchMessage sets the cold-start notification.
func (p *MemoryProvider) SetLaunchMessage(msg *Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.launch = msg
}

func (p *MemoryProvider) RequestPermission(ctx context.Context) (Permission, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.permission, p.permissionErr
}

func (p *MemoryProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token, p.tokenErr
}

func (p *MemoryProvider) Listen(ctx context.Context, h Handlers) (func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.handlers = h
	p.listening = true
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.handlers = Handlers{}
		p.listening = false
	}, nil
}

func (p *MemoryProvider) LaunchMessage(ctx context.Context) (*Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.launch, nil
}

// Listening reports whether a listener is currently attached.
func (p *MemoryProvider) Listening() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.listening
}

// EmitTokenRefresh delivers a token refresh to the attached listener.
func (p *MemoryProvider) EmitTokenRefresh(token string) {
	if fn := p.currentHandlers().TokenRefresh; fn != nil {
		fn(token)
	}
}

// EmitForeground delivers a foreground message to the attached listener.
func (p *MemoryProvider) EmitForeground(msg Message) {
	if fn := p.currentHandlers().Foreground; fn != nil {
		fn(msg)
	}
}

// EmitBackground delivers a background message to the attached listener.
func (p *MemoryProvider) EmitBackground(msg Message) {
	if fn := p.currentHandlers().Background; fn != nil {
		fn(msg)
	}
}

// EmitOpened delivers a notification tap to the attached listener.
func (p *MemoryProvider) EmitOpened(msg Message) {
	if fn := p.currentHandlers().Opened; fn != nil {
		fn(msg)
	}
}

func (p *MemoryProvider) currentHandlers() Handlers {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handlers
}
