package embedded

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	billy "gopkg.in/src-d/go-billy.v4"
)

// JournalFile is the name of the journal inside the data directory.
const JournalFile = "journal.log"

type journalEntry struct {
	Statement string    `json:"statement"`
	Time      time.Time `json:"time"`
}

// Journal is an append-only log of the statements that changed the server.
// Entries are JSON objects, one per line.
type Journal struct {
	mu  sync.Mutex
	f   billy.File
	now func() time.Time
}

// OpenJournal opens the journal of fs for appending, creating it if needed.
func OpenJournal(fs billy.Filesystem) (*Journal, error) {
	f, err := fs.OpenFile(JournalFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, ErrJournal.Wrap(err)
	}

	return &Journal{f: f, now: time.Now}, nil
}

// Append records a statement.
func (j *Journal) Append(statement string) error {
	line, err := json.Marshal(journalEntry{Statement: statement, Time: j.now().UTC()})
	if err != nil {
		return ErrJournal.Wrap(err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.f.Write(append(line, '\n')); err != nil {
		return ErrJournal.Wrap(err)
	}

	return nil
}

// Close implements the io.Closer interface.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.f.Close()
}

// ReplayJournal calls exec with every journaled statement, in order. A missing
// journal replays nothing. Statements failing in exec are logged and skipped;
// replay stops at the first entry that cannot be decoded.
func ReplayJournal(fs billy.Filesystem, exec func(statement string) error) (int, error) {
	f, err := fs.Open(JournalFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, ErrJournal.Wrap(err)
	}
	defer f.Close()

	var replayed int
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var e journalEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			logrus.WithFields(logrus.Fields{
				"line":  line,
				"error": err,
			}).Error("corrupted journal entry, replay stopped")
			return replayed, nil
		}

		if err := exec(e.Statement); err != nil {
			logrus.WithFields(logrus.Fields{
				"statement": e.Statement,
				"error":     err,
			}).Warn("unable to replay statement")
			continue
		}

		replayed++
	}

	if err := scanner.Err(); err != nil {
		return replayed, ErrJournal.Wrap(err)
	}

	return replayed, nil
}
