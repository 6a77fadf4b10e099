package achievements

import "edufunkids/internal/models"

var catalogue = []models.Badge{
	{ID: "master-huruf", Title: "Master Huruf", Description: "Selesaikan semua level Tebak Huruf", Icon: "bi-fonts", Color: "primary", Game: models.GameLetterGuess},
	{ID: "perfectionist", Title: "Perfectionist", Description: "Dapatkan skor sempurna di game Tebak Huruf", Icon: "bi-star-fill", Color: "warning", Game: models.GameLetterGuess},
	{ID: "matematika-master", Title: "Master Matematika", Description: "Selesaikan semua level Hitung Cepat", Icon: "bi-calculator", Color: "success", Game: models.GameQuickMath},
	{ID: "cepat-tangan", Title: "Cepat Tangan", Description: "Selesaikan Hitung Cepat dengan sangat cepat", Icon: "bi-lightning", Color: "danger", Game: models.GameQuickMath},
	{ID: "bintang-matematika", Title: "Bintang Matematika", Description: "Kumpulkan 10 bintang di Hitung Cepat", Icon: "bi-star", Color: "info", Game: models.GameQuickMath},
	{ID: "seniman-muda", Title: "Seniman Muda", Description: "Selesaikan semua level Mewarnai", Icon: "bi-palette", Color: "warning", Game: models.GameColoring},
	{ID: "warna-master", Title: "Master Warna", Description: "Dapatkan skor tinggi di game Mewarnai", Icon: "bi-brush", Color: "info", Game: models.GameColoring},
	{ID: "bintang-emas", Title: "Bintang Emas", Description: "Dapatkan banyak bintang sempurna", Icon: "bi-stars", Color: "warning", Game: models.GameColoring},
	{ID: "pembelajar-aktif", Title: "Pembelajar Aktif", Description: "Selesaikan 5 level materi", Icon: "bi-book", Color: "primary"},
	{ID: "pembelajar-handal", Title: "Pembelajar Handal", Description: "Selesaikan 10 level materi", Icon: "bi-book-half", Color: "primary"},
	{ID: "kolektor-poin", Title: "Kolektor Poin", Description: "Kumpulkan 100 poin", Icon: "bi-coin", Color: "warning"},
	{ID: "ahli-poin", Title: "Ahli Poin", Description: "Kumpulkan 500 poin", Icon: "bi-stars", Color: "warning"},
	{ID: "kolektor-lencana", Title: "Kolektor Lencana", Description: "Dapatkan 3 lencana game", Icon: "bi-trophy", Color: "warning"},
	{ID: "pemain-game-handal", Title: "Pemain Game Handal", Description: "Selesaikan 10 level game", Icon: "bi-controller", Color: "success"},
	{ID: "master-edufunkids", Title: "Master EduFunKids", Description: "Selesaikan semua materi", Icon: "bi-trophy-fill", Color: "warning"},
	{ID: "master-game", Title: "Master Game", Description: "Selesaikan semua level game", Icon: "bi-joystick", Color: "primary"},
}

// Catalogue lists every badge that can be earned
func Catalogue() []models.Badge {
	out := make([]models.Badge, len(catalogue))
	copy(out, catalogue)
	return out
}

// Lookup finds a badge definition by id. Unknown ids (for example stored
// achievements from an older release) get a generic definition.
func Lookup(id string) models.Badge {
	for _, b := range catalogue {
		if b.ID == id {
			return b
		}
	}
	return models.Badge{ID: id, Title: id, Icon: "bi-award", Color: "secondary"}
}
