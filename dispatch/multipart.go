package dispatch

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// uploadBody builds the multipart body for an upload dispatch: a
// `file` part carrying the source image and a `data` part carrying the
// serialized operations. The body is produced through a pipe so large
// sources stream instead of being buffered; any error while reading
// the source (file-not-found included) closes the pipe and surfaces
// through the request send, converging on the single Result.
func uploadBody(p Payload) (io.Reader, string, error) {
	ops, err := json.Marshal(p.Operations)
	if err != nil {
		return nil, "", fmt.Errorf("encoding operations: %w", err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		if err := writeParts(mw, p.Source, ops); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.Close()
	}()

	return pr, mw.FormDataContentType(), nil
}

func writeParts(mw *multipart.Writer, src *Source, ops []byte) error {
	part, err := mw.CreateFormFile("file", src.filename())
	if err != nil {
		return fmt.Errorf("creating file part: %w", err)
	}

	if err := src.copyTo(part); err != nil {
		return err
	}

	data, err := mw.CreateFormField("data")
	if err != nil {
		return fmt.Errorf("creating data part: %w", err)
	}
	if _, err := data.Write(ops); err != nil {
		return fmt.Errorf("writing data part: %w", err)
	}

	if err := mw.Close(); err != nil {
		return fmt.Errorf("finalizing multipart body: %w", err)
	}

	return nil
}

// copyTo streams the source bytes into the file part.
func (s *Source) copyTo(w io.Writer) error {
	switch {
	case s.Reader != nil:
		if _, err := io.Copy(w, s.Reader); err != nil {
			return fmt.Errorf("reading upload source: %w", err)
		}
	case s.Buffer != nil:
		if _, err := w.Write(s.Buffer); err != nil {
			return fmt.Errorf("writing upload source: %w", err)
		}
	default:
		file, err := os.Open(s.Path)
		if err != nil {
			return fmt.Errorf("opening upload source: %w", err)
		}
		defer file.Close()

		if _, err := io.Copy(w, file); err != nil {
			return fmt.Errorf("reading upload source: %w", err)
		}
	}

	return nil
}

// filename resolves the name for the multipart file part. Path sources
// use their basename; reader and buffer sources without an explicit
// name get a random hex one, unique per dispatch.
func (s *Source) filename() string {
	switch {
	case s.Filename != "":
		return s.Filename
	case s.Path != "":
		return filepath.Base(s.Path)
	default:
		return randomFilename()
	}
}

func randomFilename() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
