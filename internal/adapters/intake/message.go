package intake

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"

	"github.com/mikey/lead-vetting/internal/core"
)

// maxBodyScan bounds how much of a text part is searched for lead fields
const maxBodyScan = 64 * 1024

// leadFromMessage builds a lead from the envelope sender and the parsed message.
// The company comes from companyHeader, or from a "Company:" line in the text body.
func leadFromMessage(sender string, msg *mail.Message, companyHeader string) (*core.Lead, error) {
	email := strings.TrimSpace(sender)
	name := ""

	if from, err := mail.ParseAddress(msg.Header.Get("From")); err == nil {
		name = strings.TrimSpace(from.Name)
		if email == "" {
			email = from.Address
		}
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: sender has no address", core.ErrInvalidLead)
	}
	if name == "" {
		name = email[:strings.LastIndex(email, "@")]
	}

	company := decodeHeader(msg.Header.Get(companyHeader))
	if company == "" {
		body, err := textBody(msg)
		if err == nil {
			company = fieldFromBody(body, "company")
		}
	}

	return &core.Lead{
		UserName:    name,
		EmailDomain: email[strings.LastIndex(email, "@")+1:],
		Company:     company,
		Email:       email,
	}, nil
}

// fieldFromBody returns the value of the first "Key: value" line matching key
func fieldFromBody(body, key string) string {
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		k, v, ok := strings.Cut(scanner.Text(), ":")
		if ok && strings.EqualFold(strings.TrimSpace(k), key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// textBody returns the text/plain content of a message, walking one multipart level
func textBody(msg *mail.Message) (string, error) {
	body := io.LimitReader(msg.Body, maxBodyScan)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		b, err := io.ReadAll(body)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	var text bytes.Buffer
	mr := multipart.NewReader(body, params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if text.Len() > 0 {
				break
			}
			return "", err
		}
		if !strings.Contains(strings.ToLower(part.Header.Get("Content-Type")), "text/plain") {
			continue
		}
		b, err := io.ReadAll(part)
		if err != nil {
			continue
		}
		text.Write(b)
		text.WriteString("\n")
	}
	return text.String(), nil
}

// decodeHeader decodes RFC 2047 words, returning the raw value on failure
func decodeHeader(value string) string {
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(value)
	if err != nil {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(decoded)
}

// stampMessage prepends the verdict headers to the raw message, replacing any
// headers of the same name that were already present.
func stampMessage(raw []byte, stamps [][2]string) []byte {
	headerEnd, sepLen := bytes.Index(raw, []byte("\r\n\r\n")), 4
	if headerEnd == -1 {
		headerEnd, sepLen = bytes.Index(raw, []byte("\n\n")), 2
	}

	var out bytes.Buffer
	for _, h := range stamps {
		fmt.Fprintf(&out, "%s: %s\r\n", h[0], sanitizeHeaderValue(h[1]))
	}

	if headerEnd == -1 {
		out.WriteString("\r\n")
		out.Write(raw)
		return out.Bytes()
	}

	skip := make(map[string]bool, len(stamps))
	for _, h := range stamps {
		skip[strings.ToLower(h[0])] = true
	}

	dropping := false
	for _, line := range strings.SplitAfter(string(raw[:headerEnd]), "\n") {
		if line == "" {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			if !dropping {
				out.WriteString(line)
			}
			continue
		}
		name, _, _ := strings.Cut(line, ":")
		dropping = skip[strings.ToLower(strings.TrimSpace(name))]
		if !dropping {
			out.WriteString(line)
		}
	}
	if !bytes.HasSuffix(out.Bytes(), []byte("\n")) {
		out.WriteString("\r\n")
	}
	out.WriteString("\r\n")
	out.Write(raw[headerEnd+sepLen:])
	return out.Bytes()
}

func sanitizeHeaderValue(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
