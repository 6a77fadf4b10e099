package credentials

import (
	"crypto/rand"
	"math/big"
)

// Word lists for generating child-friendly nicknames, "animal adjective"
var animals = []string{
	"Kancil", "Gajah", "Harimau", "Kelinci", "Kucing", "Burung", "Lumba", "Penyu",
	"Rusa", "Jerapah", "Panda", "Koala", "Merak", "Elang", "Kupu", "Bebek",
	"Singa", "Zebra", "Beruang", "Tupai",
}

var adjectives = []string{
	"Ceria", "Pintar", "Berani", "Rajin", "Lincah", "Hebat", "Gembira", "Ramah",
	"Cerdik", "Tangkas", "Manis", "Kuat", "Sopan", "Riang", "Jujur", "Sigap",
}

// Avatars a generated profile can start with
var Avatars = []string{"😊", "🦁", "🐼", "🐰", "🐯", "🦊", "🐨", "🐸"}

// GenerateNickname returns a random nickname such as "Kancil Ceria"
func GenerateNickname() (string, error) {
	animal, err := randomElement(animals)
	if err != nil {
		return "", err
	}

	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}

	return animal + " " + adjective, nil
}

// GenerateAvatar picks one of Avatars
func GenerateAvatar() (string, error) {
	return randomElement(Avatars)
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}

	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}

	return slice[num.Int64()], nil
}
