package wifi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"sync"
	"time"

	"github.com/bloombooks/bloomshelf/internal/archive"
	"github.com/bloombooks/bloomshelf/internal/book"
	"github.com/bloombooks/bloomshelf/internal/meta"
)

// Well-known ports of the desktop protocol.
const (
	// DefaultAdvertPort is where the desktop broadcasts advertisements.
	DefaultAdvertPort = 5913
	// DefaultRequestPort is where the desktop listens for the device's
	// pull request.
	DefaultRequestPort = 5914
	// DefaultReceivePort is where the device's receive server listens.
	DefaultReceivePort = 5915
)

// advertsToSkipAfterRequest is the number of further advertisements for
// a requested title that are ignored before the request may be retried.
// The desktop re-broadcasts every second or so; without this, a slow
// transfer start would trigger duplicate requests.
const advertsToSkipAfterRequest = 2

// Config wires a Listener.
type Config struct {
	LibraryDir  string
	DeviceName  string
	AdvertPort  int
	RequestPort int
	ReceivePort int
	// ChunkTimeout overrides the per-chunk receive deadline.
	ChunkTimeout time.Duration
}

// Listener runs the discovery phase: it blocks on a UDP socket, decides
// per advertisement whether the announced book is wanted, and when it
// is, opens the receive server and asks the desktop to push. Transfers
// are strictly one at a time; advertisements that arrive while a
// transfer is running are dropped, not queued.
type Listener struct {
	cfg  Config
	pool *archive.Pool

	// OnBook is called with the path of each fully transferred book.
	OnBook func(path string)
	// Logf receives protocol progress lines.
	Logf func(format string, args ...interface{})

	mu          sync.Mutex
	gettingBook bool
	addsToSkip  int
	skipTitle   string
	announced   map[string]bool
	protoGripes map[string]bool

	receiver *Receiver
}

// NewListener creates a Listener. The pool provides scratch space for
// reading version tokens out of already-installed books.
func NewListener(cfg Config, pool *archive.Pool) *Listener {
	if cfg.AdvertPort == 0 {
		cfg.AdvertPort = DefaultAdvertPort
	}
	if cfg.RequestPort == 0 {
		cfg.RequestPort = DefaultRequestPort
	}
	if cfg.ReceivePort == 0 {
		cfg.ReceivePort = DefaultReceivePort
	}
	if cfg.ChunkTimeout == 0 {
		cfg.ChunkTimeout = DefaultChunkTimeout
	}
	return &Listener{
		cfg:         cfg,
		pool:        pool,
		Logf:        func(string, ...interface{}) {},
		announced:   map[string]bool{},
		protoGripes: map[string]bool{},
	}
}

// Run blocks receiving advertisements until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: l.cfg.AdvertPort})
	if err != nil {
		return fmt.Errorf("binding advertisement socket: %w", err)
	}
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	defer conn.Close()

	l.Logf("listening for book advertisements on UDP %d", l.cfg.AdvertPort)
	buf := make([]byte, 64*1024)
	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("advertisement receive: %w", err)
		}
		l.HandleAdvertisement(buf[:n], addr.IP)
	}
}

// HandleAdvertisement processes one discovery datagram from senderIP.
// Exported so the receive loop stays a thin shell around it.
func (l *Listener) HandleAdvertisement(data []byte, senderIP net.IP) {
	adv, err := ParseAdvertisement(data)
	if err != nil {
		l.Logf("ignoring malformed advertisement: %v", err)
		return
	}
	if err := adv.CheckProtocol(); err != nil {
		l.gripeOnce(adv, err)
		return
	}

	l.mu.Lock()
	if l.gettingBook {
		if adv.Title != l.skipTitle {
			// One transfer at a time; other titles are dropped, not
			// queued.
			l.mu.Unlock()
			return
		}
		if l.addsToSkip > 0 || (l.receiver != nil && l.receiver.Active()) {
			if l.addsToSkip > 0 {
				l.addsToSkip--
			}
			l.mu.Unlock()
			return
		}
		// The countdown ran out and no bytes ever arrived: the sender
		// probably never connected. Tear down and re-request below.
		rc := l.receiver
		l.receiver = nil
		l.gettingBook = false
		l.mu.Unlock()
		if rc != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			rc.Stop(ctx)
			cancel()
		}
		l.Logf("transfer of %q appears stalled, retrying", adv.Title)
	} else {
		l.mu.Unlock()
	}

	if l.upToDate(adv) {
		l.announceOnce(adv.Title)
		return
	}
	if err := l.requestBook(adv, senderIP); err != nil {
		l.Logf("requesting %q from %s: %v", adv.Title, adv.Sender, err)
	}
}

// upToDate reports whether the advertised book is already installed
// with the advertised version token.
func (l *Listener) upToDate(adv Advertisement) bool {
	path := filepath.Join(l.cfg.LibraryDir, adv.Title+book.BookExt)
	s, err := l.pool.Acquire("wifi")
	if err != nil {
		return false
	}
	a, err := archive.Open(path, s)
	if err != nil {
		// Not installed, or unreadable: either way we want the copy.
		return false
	}
	defer a.Close()
	token := meta.ReadVersion(a)
	return token != "" && meta.VersionsEqual(token, adv.Version)
}

// requestBook opens the receive server and sends the pull request.
func (l *Listener) requestBook(adv Advertisement, senderIP net.IP) error {
	deviceIP, err := siteLocalIP()
	if err != nil {
		return err
	}

	rc := NewReceiver(l.cfg.LibraryDir)
	rc.chunkTimeout = l.cfg.ChunkTimeout
	rc.Logf = l.Logf
	rc.OnFile = func(path, _ string) {
		if l.OnBook != nil {
			l.OnBook(path)
		}
	}
	rc.OnDone = func() { l.transferComplete(adv.Title) }
	if err := rc.Start(fmt.Sprintf(":%d", l.cfg.ReceivePort)); err != nil {
		return err
	}

	req := Request{
		DeviceAddress: fmt.Sprintf("%s:%d", deviceIP, l.cfg.ReceivePort),
		DeviceName:    l.cfg.DeviceName,
	}
	conn, err := net.DialUDP("udp4", nil, &net.UDPAddr{IP: senderIP, Port: l.cfg.RequestPort})
	if err != nil {
		rc.Stop(context.Background())
		return err
	}
	defer conn.Close()
	if _, err := conn.Write(req.Encode()); err != nil {
		rc.Stop(context.Background())
		return err
	}

	l.mu.Lock()
	l.gettingBook = true
	l.addsToSkip = advertsToSkipAfterRequest
	l.skipTitle = adv.Title
	l.receiver = rc
	l.mu.Unlock()
	l.Logf("requested %q from %s", adv.Title, adv.Sender)
	return nil
}

// transferComplete returns the session to Idle.
func (l *Listener) transferComplete(title string) {
	l.mu.Lock()
	rc := l.receiver
	l.receiver = nil
	l.gettingBook = false
	l.addsToSkip = 0
	l.skipTitle = ""
	l.announced[title] = true
	l.mu.Unlock()
	if rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rc.Stop(ctx)
	}
	l.Logf("transfer of %q complete", title)
}

// announceOnce logs an "already up to date" line once per title per
// session; the desktop re-broadcasts constantly and the log should not
// fill with repeats.
func (l *Listener) announceOnce(title string) {
	l.mu.Lock()
	seen := l.announced[title]
	l.announced[title] = true
	l.mu.Unlock()
	if !seen {
		l.Logf("%q is already up to date", title)
	}
}

// gripeOnce reports a protocol mismatch once per direction per session;
// afterwards such advertisements are dropped silently.
func (l *Listener) gripeOnce(adv Advertisement, err error) {
	key := "old"
	if errors.Is(err, ErrSenderTooNew) {
		key = "new"
	}
	l.mu.Lock()
	seen := l.protoGripes[key]
	l.protoGripes[key] = true
	l.mu.Unlock()
	if !seen {
		l.Logf("ignoring %q from %s: %v", adv.Title, adv.Sender, err)
	}
}

// siteLocalIP picks the device's LAN address for the request datagram.
func siteLocalIP() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		ip := ipNet.IP.To4()
		if ip != nil && ip.IsPrivate() {
			return ip.String(), nil
		}
	}
	return "", fmt.Errorf("no site-local IPv4 address found")
}
