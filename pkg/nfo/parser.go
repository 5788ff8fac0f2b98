package nfo

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/net/html/charset"
)

// xmlDocument accepts any root element (movie, movieinfo, episodedetails, ...).
type xmlDocument struct {
	XMLName       xml.Name
	Title         string        `xml:"title"`
	OriginalTitle string        `xml:"originaltitle"`
	SortTitle     string        `xml:"sorttitle"`
	Tagline       string        `xml:"tagline"`
	Plot          string        `xml:"plot"`
	Outline       string        `xml:"outline"`
	Rating        string        `xml:"rating"`
	Ratings       *xmlRatings   `xml:"ratings"`
	UserRating    string        `xml:"userrating"`
	Votes         string        `xml:"votes"`
	Year          string        `xml:"year"`
	Premiered     string        `xml:"premiered"`
	Released      string        `xml:"released"`
	Runtime       string        `xml:"runtime"`
	Country       []string      `xml:"country"`
	Director      []string      `xml:"director"`
	Studio        []string      `xml:"studio"`
	MPAA          string        `xml:"mpaa"`
	ID            string        `xml:"id"`
	Num           string        `xml:"num"`
	UniqueIDs     []xmlUniqueID `xml:"uniqueid"`
	Genres        []string      `xml:"genre"`
	Tags          []string      `xml:"tag"`
	Actors        []xmlActor    `xml:"actor"`
	Poster        string        `xml:"poster"`
	Thumbnail     string        `xml:"thumbnail"`
	Thumbs        []xmlThumb    `xml:"thumb"`
	Fanart        *xmlFanart    `xml:"fanart"`
}

type xmlActor struct {
	Name  string `xml:"name"`
	Role  string `xml:"role"`
	Thumb string `xml:"thumb"`
	Order string `xml:"order"`
}

type xmlUniqueID struct {
	Type    string `xml:"type,attr"`
	Default string `xml:"default,attr"`
	Value   string `xml:",chardata"`
}

type xmlRatings struct {
	Ratings []xmlRating `xml:"rating"`
}

type xmlRating struct {
	Name    string `xml:"name,attr"`
	Default string `xml:"default,attr"`
	Value   string `xml:"value"`
	Votes   string `xml:"votes"`
}

type xmlThumb struct {
	Aspect string `xml:"aspect,attr"`
	Type   string `xml:"type,attr"`
	URL    string `xml:",chardata"`
}

type xmlFanart struct {
	URL    string     `xml:",chardata"`
	Thumbs []xmlThumb `xml:"thumb"`
}

// Parse reads and decodes one sidecar file. It fails only when the file is
// unreadable, not XML, or carries neither a title nor an identifier; broken
// optional values are dropped individually.
func Parse(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	meta, err := Decode(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	return meta, nil
}

// Decode parses sidecar content that is already in memory.
func Decode(data []byte) (*Metadata, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = false
	decoder.AutoClose = xml.HTMLAutoClose
	decoder.Entity = xml.HTMLEntity
	decoder.CharsetReader = charset.NewReaderLabel

	var doc xmlDocument
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("not a valid XML sidecar: %w", err)
	}

	meta := &Metadata{
		Title:         text(doc.Title),
		OriginalTitle: text(doc.OriginalTitle),
		SortTitle:     text(doc.SortTitle),
		Tagline:       text(doc.Tagline),
		Plot:          text(doc.Plot),
		Outline:       text(doc.Outline),
		UserRating:    floatOrNil(doc.UserRating),
		Votes:         intOrNil(doc.Votes),
		Year:          intOrNil(doc.Year),
		Premiered:     text(doc.Premiered),
		Released:      text(doc.Released),
		Runtime:       intOrNil(doc.Runtime),
		Country:       first(doc.Country),
		Director:      first(doc.Director),
		Studio:        first(doc.Studio),
		MPAA:          text(doc.MPAA),
		Genres:        uniqueTexts(doc.Genres),
		Tags:          uniqueTexts(doc.Tags),
	}

	meta.Rating = floatOrNil(doc.Rating)
	if meta.Rating == nil && doc.Ratings != nil {
		meta.Rating, meta.Votes = defaultRating(doc.Ratings, meta.Votes)
	}

	if meta.Year == nil {
		meta.Year = yearOf(meta.Premiered)
	}
	if meta.Year == nil {
		meta.Year = yearOf(meta.Released)
	}

	meta.UniqueIDs = parseUniqueIDs(doc)
	meta.Actors = parseActors(doc.Actors)
	parseArtwork(doc, meta)

	if meta.Title == "" && meta.Identifier() == "" {
		return nil, ErrNoTitle
	}

	return meta, nil
}

func parseUniqueIDs(doc xmlDocument) []UniqueID {
	var result []UniqueID
	for _, uid := range doc.UniqueIDs {
		value := text(uid.Value)
		if value == "" {
			continue
		}
		result = append(result, UniqueID{
			Type:    text(uid.Type),
			Value:   value,
			Default: strings.EqualFold(text(uid.Default), "true"),
		})
	}

	// Legacy single-id fields
	if len(result) == 0 {
		if id := text(doc.ID); id != "" {
			result = append(result, UniqueID{Type: "id", Value: id, Default: true})
		}
		if num := text(doc.Num); num != "" {
			result = append(result, UniqueID{Type: "num", Value: num, Default: len(result) == 0})
		}
	}

	return result
}

func parseActors(actors []xmlActor) []Actor {
	var result []Actor
	for _, a := range actors {
		name := text(a.Name)
		if name == "" {
			continue
		}
		actor := Actor{
			Name:  name,
			Role:  text(a.Role),
			Order: intOrNil(a.Order),
		}
		if thumb := text(a.Thumb); isLocalPath(thumb) {
			actor.Thumb = thumb
		}
		result = append(result, actor)
	}
	return result
}

func parseArtwork(doc xmlDocument, meta *Metadata) {
	if poster := text(doc.Poster); isLocalPath(poster) {
		meta.PosterHint = poster
	}
	if meta.PosterHint == "" {
		for _, thumb := range doc.Thumbs {
			if !isPosterThumb(thumb) {
				continue
			}
			if url := text(thumb.URL); isLocalPath(url) {
				meta.PosterHint = url
				break
			}
		}
	}

	if thumbnail := text(doc.Thumbnail); isLocalPath(thumbnail) {
		meta.ThumbHint = thumbnail
	}
	if meta.ThumbHint == "" {
		for _, thumb := range doc.Thumbs {
			if isPosterThumb(thumb) {
				continue
			}
			if url := text(thumb.URL); isLocalPath(url) {
				meta.ThumbHint = url
				break
			}
		}
	}

	if doc.Fanart != nil {
		candidate := text(doc.Fanart.URL)
		if len(doc.Fanart.Thumbs) > 0 {
			candidate = text(doc.Fanart.Thumbs[0].URL)
		}
		if isLocalPath(candidate) {
			meta.FanartHint = candidate
		}
	}
}

func defaultRating(r *xmlRatings, votes *int) (*float64, *int) {
	var chosen *xmlRating
	for i := range r.Ratings {
		if strings.EqualFold(text(r.Ratings[i].Default), "true") {
			chosen = &r.Ratings[i]
			break
		}
	}
	if chosen == nil && len(r.Ratings) > 0 {
		chosen = &r.Ratings[0]
	}
	if chosen == nil {
		return nil, votes
	}
	if votes == nil {
		votes = intOrNil(chosen.Votes)
	}
	return floatOrNil(chosen.Value), votes
}

func isPosterThumb(thumb xmlThumb) bool {
	return strings.EqualFold(thumb.Aspect, "poster") || strings.EqualFold(thumb.Type, "poster")
}

// isLocalPath rejects empty values and remote URLs.
func isLocalPath(s string) bool {
	if s == "" {
		return false
	}
	lower := strings.ToLower(s)
	return !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://")
}

func text(s string) string {
	return strings.TrimSpace(s)
}

func first(values []string) string {
	for _, v := range values {
		if t := text(v); t != "" {
			return t
		}
	}
	return ""
}

func uniqueTexts(values []string) []string {
	result := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		t := text(v)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		result = append(result, t)
	}
	return result
}

func intOrNil(s string) *int {
	s = text(s)
	if s == "" {
		return nil
	}
	// cast parses with base prefixes, so "08" must lose its leading zero.
	if trimmed := strings.TrimLeft(s, "0"); trimmed != s {
		s = trimmed
		if s == "" {
			s = "0"
		}
	}
	v, err := cast.ToIntE(s)
	if err != nil {
		return nil
	}
	return &v
}

func floatOrNil(s string) *float64 {
	s = text(s)
	if s == "" {
		return nil
	}
	v, err := cast.ToFloat64E(s)
	if err != nil {
		return nil
	}
	return &v
}

func yearOf(date string) *int {
	if len(date) < 4 {
		return nil
	}
	return intOrNil(date[:4])
}
