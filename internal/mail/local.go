// Package mail provides disposable email addresses: a local generator that
// needs no network, and a client for the mail.tm inbox API.
package mail

import (
	"slices"

	"github.com/zarlcorp/zpersona/internal/identity"
)

// domains is the fixed pool used by the local generator.
var domains = []string{
	"139.run",
	"vod365.com",
	"pda315.com",
	"10086hy.com",
	"kelianbao.com",
	"eattea.uk",
}

// words holds short English words used as mailbox names.
var words = []string{
	"ai", "an", "as", "at", "be", "by", "do", "go", "he", "hi", "if", "in", "is",
	"it", "me", "my", "no", "of", "ok", "on", "or", "so", "to", "up", "us", "we",
	"ace", "act", "add", "age", "aid", "aim", "air", "all", "and", "any", "app",
	"are", "arm", "art", "ask", "bad", "bag", "bar", "bat", "bay", "bed", "bee",
	"bet", "big", "bit", "box", "boy", "bug", "bus", "but", "buy", "can", "car",
	"cat", "cup", "cut", "day", "did", "dog", "dot", "dry", "ear", "eat", "egg",
	"end", "eye", "far", "fat", "few", "fly", "for", "fox", "fun", "get", "got",
	"guy", "had", "has", "hat", "her", "him", "his", "hit", "hot", "how", "ice",
	"job", "joy", "key", "kid", "law", "lay", "leg", "let", "lot", "low", "man",
	"map", "max", "may", "mix", "mom", "new", "now", "odd", "off", "old", "one",
	"our", "out", "own", "pay", "pen", "pet", "pic", "pie", "pop", "put", "ran",
	"red", "run", "say", "sea", "see", "set", "she", "shy", "sit", "six", "sky",
	"sun", "tea", "ten", "the", "top", "toy", "try", "two", "use", "van", "way",
	"web", "who", "why", "win", "yes", "yet", "you", "zoo",
}

// Generator produces addresses locally and synchronously.
type Generator struct {
	rand identity.Rand
}

// NewGenerator creates a generator. A nil r uses a crypto-seeded source.
func NewGenerator(r identity.Rand) *Generator {
	if r == nil {
		r = identity.NewRand()
	}
	return &Generator{rand: r}
}

// Email returns word@domain with the word and domain drawn from the fixed
// pools.
func (g *Generator) Email() string {
	return words[g.rand.IntN(len(words))] + "@" + domains[g.rand.IntN(len(domains))]
}

// Domains returns the fixed domain pool.
func (g *Generator) Domains() []string {
	return slices.Clone(domains)
}
