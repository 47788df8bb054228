// Package journal is an append-only audit log of ledger engine runs, one JSON line per run.
package journal

import (
	"bufio"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/nxadm/tail"
)

// Entry is one completed recompute run
type Entry struct {
	LogID int64 `json:"logID"`
	Ts    int64 `json:"ts"` // unix nanoseconds

	Owner       int64  `json:"owner"`
	Processed   int    `json:"processed"`   // non-placing transactions replayed
	Oversells   int    `json:"oversells"`   // data warnings emitted during the run
	TotalProfit string `json:"totalProfit"` // cumulative profit of the last transaction
	TookMs      int64  `json:"tookMs"`
}

type Journal struct {
	File     *os.File
	FilePath string

	logID int64 // last log id written by this instance
}

func New(filePath string) (j *Journal, err error) {
	j = &Journal{
		FilePath: filePath,
	}
	err = j.Open()
	if err != nil {
		return
	}

	// resume log ids from the last line, a fresh file starts at 0
	s, err := j.ReadLastLine()
	if err != nil {
		return
	}
	if s != "" {
		var e Entry
		if jerr := json.Unmarshal([]byte(s), &e); jerr == nil {
			j.logID = e.LogID
		}
	}

	return
}

func (j *Journal) Open() (err error) {
	err = os.MkdirAll(filepath.Dir(j.FilePath), 0755)
	if err != nil {
		return
	}

	j.File, err = os.OpenFile(j.FilePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return
	}
	return
}

func (j *Journal) Close() (err error) {
	if j.File == nil {
		return
	}

	err = j.File.Close()
	if err != nil {
		return
	}

	j.File = nil

	return
}

// Append assigns the next log id to e and writes it as one JSON line
func (j *Journal) Append(e Entry) (err error) {
	j.logID++
	e.LogID = j.logID

	b, err := json.Marshal(e)
	if err != nil {
		return
	}

	err = j.WriteLine(string(b) + "\n")
	if err != nil {
		j.logID--
		return
	}

	return
}

// LogID returns the last log id written by this instance
func (j *Journal) LogID() int64 {
	return j.logID
}

func (j *Journal) WriteLine(s string) (err error) {
	_, err = j.File.WriteString(s)
	if err != nil {
		log.Println("WriteLine err:", err)
		return
	}

	return
}

// ReadLastLine reads the last non-empty line of the file
func (j *Journal) ReadLastLine() (s string, err error) {
	stat, err := j.File.Stat()
	if err != nil {
		return
	}

	// Since we don't know how many bytes the last line has, try to read the last 1024 bytes, and extract the last line based on \n
	var b []byte
	var off int64
	size := stat.Size()
	if size == 0 {
		return
	}
	if size < 1024 {
		b = make([]byte, size)
	} else {
		b = make([]byte, 1024)
		off = size - 1024
	}

	_, err = j.File.ReadAt(b, off)
	if err != nil {
		return
	}

	txt := strings.Trim(string(b), " \n")
	txts := strings.Split(txt, "\n")

	if len(txts) == 0 {
		return
	}

	s = txts[len(txts)-1]

	return
}

// ReadFirstLine reads the first non-empty line of the file
func (j *Journal) ReadFirstLine() (s string, err error) {
	_, err = j.File.Seek(0, 0)
	if err != nil {
		return
	}

	reader := bufio.NewReader(j.File)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", err
		}

		line = strings.TrimSpace(line)
		if line != "" {
			s = line
			return s, nil
		}
	}

	return "", io.EOF
}

// Tailf continuously monitors new entries and passes them to the handler via chan
func (j *Journal) Tailf(ch chan<- string) (err error) {
	var loc *tail.SeekInfo
	ta, err := tail.TailFile(j.FilePath, tail.Config{
		Follow:        true,
		ReOpen:        true,
		Location:      loc,
		CompleteLines: true,
	})
	if err != nil {
		return
	}

	for line := range ta.Lines {
		if line.Err != nil {
			// If an error occurs in a line of data, exit and return the error. Do not skip this line directly, as this may cause data disorder.
			err = line.Err
			return
		}

		ch <- line.Text
	}

	return
}
