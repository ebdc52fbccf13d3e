package mailbox

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"

	"github.com/ObservantAbc123/OpenFarm3-D/internal/config"
)

const allMailAttr = "\\All"

// IMAPStore opens one IMAP session per poll cycle. The account's
// all-mail folder (special-use \All) is preferred so mail the provider
// already filed elsewhere is still seen; INBOX is the fallback.
type IMAPStore struct {
	host        string
	port        int
	account     string
	password    string
	dialTimeout time.Duration
	logger      *zap.Logger
}

func NewIMAPStore(cfg config.MailConfig, logger *zap.Logger) *IMAPStore {
	return &IMAPStore{
		host:        cfg.Host,
		port:        cfg.Port,
		account:     cfg.Account,
		password:    cfg.Password,
		dialTimeout: 30 * time.Second,
		logger:      logger,
	}
}

func (s *IMAPStore) Connect(ctx context.Context) (Session, error) {
	dialer := &net.Dialer{Timeout: s.dialTimeout}
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	conn, err := tls.DialWithDialer(dialer, "tcp", addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	c, err := client.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create IMAP client: %w", err)
	}

	if err := c.Login(s.account, s.password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	sess := &imapSession{client: c, logger: s.logger}
	if err := sess.selectFolder(); err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}

type imapSession struct {
	client *client.Client
	logger *zap.Logger
}

func (s *imapSession) selectFolder() error {
	name := s.findAllMailFolder()
	if name != "" {
		if _, err := s.client.Select(name, false); err == nil {
			s.logger.Debug("Selected all-mail folder", zap.String("folder", name))
			return nil
		}
		s.logger.Warn("Failed to select all-mail folder, falling back to INBOX",
			zap.String("folder", name))
	}
	if _, err := s.client.Select("INBOX", false); err != nil {
		return fmt.Errorf("failed to select INBOX: %w", err)
	}
	return nil
}

func (s *imapSession) findAllMailFolder() string {
	mailboxes := make(chan *imap.MailboxInfo, 32)
	done := make(chan error, 1)
	go func() {
		done <- s.client.List("", "*", mailboxes)
	}()

	name := ""
	for mb := range mailboxes {
		for _, attr := range mb.Attributes {
			if attr == allMailAttr {
				name = mb.Name
			}
		}
	}
	if err := <-done; err != nil {
		s.logger.Debug("Folder listing failed", zap.Error(err))
		return ""
	}
	return name
}

// FetchUnseen returns the folder's unread messages in the order the
// search reported them. Bodies are fetched with BODY.PEEK so nothing
// gets implicitly flagged read before its side effects are done.
func (s *imapSession) FetchUnseen(ctx context.Context) ([]Inbound, error) {
	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}

	uids, err := s.client.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search unseen: %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- s.client.UidFetch(seqSet, items, messages)
	}()

	byUID := make(map[uint32]Inbound, len(uids))
	for msg := range messages {
		byUID[msg.Uid] = s.parseMessage(msg, section)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}

	// Keep the search order.
	inbound := make([]Inbound, 0, len(uids))
	for _, uid := range uids {
		if in, ok := byUID[uid]; ok {
			inbound = append(inbound, in)
		}
	}
	return inbound, nil
}

func (s *imapSession) parseMessage(msg *imap.Message, section *imap.BodySectionName) Inbound {
	in := Inbound{UID: msg.Uid}

	if msg.Envelope != nil {
		in.Subject = msg.Envelope.Subject
		in.Date = msg.Envelope.Date
		if len(msg.Envelope.From) > 0 {
			in.From = msg.Envelope.From[0].Address()
		}
	}

	bodyReader := msg.GetBody(section)
	if bodyReader == nil {
		return in
	}

	mr, err := mail.CreateReader(bodyReader)
	if err != nil {
		s.logger.Warn("Failed to read message body",
			zap.Uint32("uid", msg.Uid), zap.Error(err))
		return in
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.logger.Warn("Failed to read message part",
				zap.Uint32("uid", msg.Uid), zap.Error(err))
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := h.ContentType()
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		switch {
		case strings.HasPrefix(ct, "text/plain") && in.Text == "":
			in.Text = string(body)
		case strings.HasPrefix(ct, "text/html") && in.HTML == "":
			in.HTML = string(body)
		}
	}
	return in
}

func (s *imapSession) MarkSeen(ctx context.Context, uid uint32) error {
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.SeenFlag}

	if err := s.client.UidStore(seqSet, item, flags, nil); err != nil {
		return fmt.Errorf("failed to flag seen: %w", err)
	}
	return nil
}

// Close logs out. Teardown failures are logged, never surfaced.
func (s *imapSession) Close() error {
	if err := s.client.Logout(); err != nil {
		s.logger.Debug("IMAP logout failed", zap.Error(err))
	}
	return nil
}
