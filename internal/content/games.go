package content

import "edufunkids/internal/models"

// LevelsPerGame is the number of levels every mini-game offers
const LevelsPerGame = 5

// GameInfo describes a mini-game for listings
type GameInfo struct {
	ID          models.GameID `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	Levels      []string      `json:"levels"`
}

// Games lists the mini-games in display order
var Games = []GameInfo{
	{
		ID:          models.GameLetterGuess,
		Title:       "Tebak Huruf",
		Description: "Tebak huruf awal dari gambar benda",
		Icon:        "bi-fonts",
		Levels:      []string{"Huruf A-E", "Huruf F-J", "Huruf K-O", "Huruf P-T", "Huruf U-Z"},
	},
	{
		ID:          models.GameQuickMath,
		Title:       "Hitung Cepat",
		Description: "Jawab soal hitungan sebelum waktu habis",
		Icon:        "bi-calculator",
		Levels:      []string{"Penjumlahan 1-10", "Pengurangan 1-10", "Penjumlahan 10-20", "Pengurangan 10-20", "Campuran 1-20"},
	},
	{
		ID:          models.GameColoring,
		Title:       "Mewarnai",
		Description: "Warnai gambar dengan kreasimu sendiri",
		Icon:        "bi-palette",
		Levels:      []string{"Buah-buahan", "Hewan Lucu", "Rumah", "Pemandangan", "Kreasi Bebas"},
	},
}

// Game looks up a game by identifier
func Game(id models.GameID) (GameInfo, bool) {
	for _, g := range Games {
		if g.ID == id {
			return g, true
		}
	}
	return GameInfo{}, false
}

// PictureWord is an object whose name starts with a given letter
type PictureWord struct {
	Letter string `json:"letter"`
	Name   string `json:"name"`
	Image  string `json:"image"`
}

// LetterGuessLevels holds the letter set of each letter-guess level, indexed by level-1
var LetterGuessLevels = [LevelsPerGame][]PictureWord{
	{
		{"A", "Apel", "/img/apel.png"},
		{"B", "Bola", "/img/bola.png"},
		{"C", "Cicak", "/img/cicak.png"},
		{"D", "Dadu", "/img/dadu.png"},
		{"E", "Es Krim", "/img/es-krim.png"},
	},
	{
		{"F", "Foto", "/img/foto.png"},
		{"G", "Gajah", "/img/gajah.png"},
		{"H", "Hiu", "/img/hiu.png"},
		{"I", "Ikan", "/img/ikan.png"},
		{"J", "Jagung", "/img/jagung.png"},
	},
	{
		{"K", "Kucing", "/img/kucing.png"},
		{"L", "Lemon", "/img/lemon.png"},
		{"M", "Mobil", "/img/mobil.png"},
		{"N", "Naga", "/img/naga.png"},
		{"O", "Owl", "/img/owl.png"},
	},
	{
		{"P", "Pisang", "/img/pisang.png"},
		{"Q", "Queen", "/img/queen.png"},
		{"R", "Rusa", "/img/rusa.png"},
		{"S", "Sun", "/img/sun.png"},
		{"T", "Topi", "/img/topi.png"},
	},
	{
		{"U", "Ubur", "/img/ubur.png"},
		{"V", "Violet", "/img/violet.png"},
		{"W", "Wortel", "/img/wortel.png"},
		{"X", "Xylophone", "/img/xylophone.png"},
		{"Y", "Yoyo", "/img/yoyo.png"},
		{"Z", "Zebra", "/img/zebra.png"},
	},
}

// AllPictureWords returns every picture word across all letter-guess levels
func AllPictureWords() []PictureWord {
	var all []PictureWord
	for _, level := range LetterGuessLevels {
		all = append(all, level...)
	}
	return all
}

// Operation is an arithmetic operation used by quick-math
type Operation string

const (
	OpAdd      Operation = "+"
	OpSubtract Operation = "-"
	OpMixed    Operation = "mixed"
)

// MathLevel is the operand range and operation of a quick-math level
type MathLevel struct {
	Operation Operation
	Min       int
	Max       int
}

// QuickMathLevels is indexed by level-1
var QuickMathLevels = [LevelsPerGame]MathLevel{
	{OpAdd, 1, 10},
	{OpSubtract, 1, 10},
	{OpAdd, 10, 20},
	{OpSubtract, 10, 20},
	{OpMixed, 1, 20},
}

// ColoringLevel describes a coloring picture
type ColoringLevel struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Outline     string            `json:"outline"`
	Targets     map[string]string `json:"targets"`
	Hints       []string          `json:"hints"`
}

// ColoringLevels is indexed by level-1
var ColoringLevels = [LevelsPerGame]ColoringLevel{
	{
		Title:       "Buah Apel",
		Description: "Warnai buah apel dengan warna merah yang segar!",
		Outline:     "/img/apel-outline.png",
		Targets:     map[string]string{"apple": "#ff0000", "leaf": "#00ff00", "stem": "#8B4513"},
		Hints:       []string{"Gunakan warna merah untuk buah apel", "Daunnya berwarna hijau", "Tangkai berwarna coklat"},
	},
	{
		Title:       "Kupu-kupu",
		Description: "Buat kupu-kupu menjadi colorful dan cantik!",
		Outline:     "/img/butterfly-outline.png",
		Targets:     map[string]string{"wings": "#ffeb3b", "body": "#795548", "details": "#ff5722"},
		Hints:       []string{"Sayap bisa berwarna kuning atau warna cerah lainnya", "Badan kupu-kupu berwarna coklat", "Tambahkan pola warna-warni"},
	},
	{
		Title:       "Rumah Impian",
		Description: "Warnai rumah impianmu dengan warna favorit!",
		Outline:     "/img/house-outline.png",
		Targets:     map[string]string{"walls": "#87CEEB", "roof": "#ff0000", "door": "#8B4513", "windows": "#ffff00"},
		Hints:       []string{"Dinding rumah bisa biru langit", "Atap berwarna merah", "Pintu berwarna coklat kayu", "Jendela berwarna kuning"},
	},
	{
		Title:       "Pemandangan Laut",
		Description: "Ciptakan pemandangan laut yang indah!",
		Outline:     "/img/beach-outline.png",
		Targets:     map[string]string{"sky": "#87CEEB", "sea": "#0000ff", "sand": "#f4a460", "sun": "#ffff00"},
		Hints:       []string{"Langit berwarna biru cerah", "Laut berwarna biru tua", "Pasir pantai berwarna kuning kecoklatan", "Matahari berwarna kuning"},
	},
	{
		Title:       "Hewan Laut",
		Description: "Warnai ikan dan teman-teman lautnya!",
		Outline:     "/img/fish-outline.png",
		Targets:     map[string]string{"fish": "#ff6b6b", "bubbles": "#87CEEB", "coral": "#ff1493", "water": "#1e90ff"},
		Hints:       []string{"Ikan bisa berwarna merah atau orange", "Gelembung udara berwarna biru muda", "Karang laut berwarna pink cerah", "Air laut berwarna biru"},
	},
}

// PaletteColor is a named paint color
type PaletteColor struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Palette is the set of colors offered in the coloring game
var Palette = []PaletteColor{
	{"Merah", "#ff0000"},
	{"Biru", "#0000ff"},
	{"Hijau", "#00ff00"},
	{"Kuning", "#ffff00"},
	{"Ungu", "#800080"},
	{"Orange", "#ffa500"},
	{"Pink", "#ff69b4"},
	{"Coklat", "#8B4513"},
	{"Hitam", "#000000"},
	{"Putih", "#ffffff"},
	{"Abu-abu", "#808080"},
	{"Emas", "#ffd700"},
}
