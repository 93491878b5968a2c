package mapping

import "golang.org/x/text/language"

// indonesianGroups is the built-in Indonesian dictionary. Order matters:
// a source listed twice keeps the target of its last occurrence
// ("tidak" and "bukan" end up as "not", "keluarkan" as "pop").
var indonesianGroups = []Group{
	// Basic I/O
	{"print", []string{"cetak", "tampilkan", "tulis", "keluarkan"}},
	{"input", []string{"masukan", "input_pengguna", "ambil_input", "tanya"}},

	// Type conversion
	{"int", []string{"ke_angka", "ke_integer", "ke_bilangan"}},
	{"float", []string{"ke_desimal", "ke_float", "ke_pecahan"}},
	{"str", []string{"ke_teks", "ke_string", "ke_kata"}},
	{"bool", []string{"ke_boolean", "ke_bool"}},

	// Strings
	{"len", []string{"panjang", "ukuran", "hitung", "banyak"}},
	{"join", []string{"gabung", "sambung", "satukan"}},
	{"split", []string{"pisah", "bagi", "potong", "pecah"}},
	{"replace", []string{"ganti", "ubah", "tukar", "substitusi"}},
	{"find", []string{"cari", "temukan", "lokasi", "posisi"}},
	{"upper", []string{"huruf_besar", "kapital", "besar_semua"}},
	{"lower", []string{"huruf_kecil", "kecil_semua", "lowercase"}},
	{"startswith", []string{"awalan", "dimulai_dengan"}},
	{"endswith", []string{"akhiran", "diakhiri_dengan"}},
	{"strip", []string{"hapus_spasi", "trim", "bersihkan"}},

	// Lists
	{"list", []string{"daftar", "buat_daftar", "array", "senarai"}},
	{"append", []string{"tambah", "masukkan"}},
	{"insert", []string{"sisipkan"}},
	{"remove", []string{"hapus", "buang"}},
	{"pop", []string{"hilangkan", "keluarkan"}},
	{"sort", []string{"urutkan", "sortir", "susun"}},
	{"sorted", []string{"atur"}},
	{"reverse", []string{"balik", "kebalikan"}},
	{"reversed", []string{"terbalik"}},
	{"copy", []string{"salin", "duplikat", "kopi"}},
	{"clear", []string{"kosongkan", "bersihkan_daftar"}},
	{"count", []string{"hitung_item", "jumlah_item"}},

	// Dictionaries
	{"dict", []string{"kamus", "dictionary", "buat_kamus", "peta"}},
	{"keys", []string{"kunci", "semua_kunci", "daftar_kunci"}},
	{"values", []string{"nilai", "semua_nilai", "daftar_nilai"}},
	{"items", []string{"item", "semua_item", "pasangan"}},
	{"get", []string{"ambil", "dapatkan", "cari_nilai"}},
	{"update", []string{"perbarui", "gabung_kamus"}},

	// Files
	{"open", []string{"buka_file", "baca_file", "akses_file"}},
	{"close", []string{"tutup_file"}},
	{"write", []string{"simpan_file"}},

	// Math
	{"max", []string{"maksimum", "terbesar", "paling_besar"}},
	{"min", []string{"minimum", "terkecil", "paling_kecil"}},
	{"sum", []string{"jumlah", "total", "tambah_semua", "sigma"}},
	{"statistics.mean", []string{"rata_rata", "mean", "rerata"}},
	{"statistics.median", []string{"median", "nilai_tengah"}},
	{"round", []string{"bulat", "pembulatan", "bulatkan"}},
	{"abs", []string{"absolut", "mutlak", "nilai_absolut"}},
	{"pow", []string{"pangkat", "eksponen", "kuadrat"}},

	// Ranges and iteration
	{"range", []string{"rentang", "jangkauan", "dari_sampai"}},
	{"enumerate", []string{"enumerasi", "enum", "nomori"}},
	{"zip", []string{"zip_data", "gabung_data", "pasangkan"}},

	// Type checks
	{"type", []string{"tipe", "jenis", "type_data"}},
	{"isinstance", []string{"adalah_angka", "adalah_teks"}},

	// Control flow
	{"if", []string{"jika", "kalau", "bila", "andai"}},
	{"elif", []string{"atau_jika", "atau_kalau", "else_if"}},
	{"else", []string{"selain_itu", "lainnya", "jika_tidak"}},
	{"for", []string{"untuk", "setiap", "tiap"}},
	{"while", []string{"selama", "ketika", "saat"}},
	{"in", []string{"dalam", "di", "pada", "ada_dalam"}},
	{"break", []string{"keluar", "berhenti", "stop"}},
	{"continue", []string{"lanjut", "skip", "lewati"}},
	{"return", []string{"kembali", "kembalikan", "hasil"}},

	// Booleans and logic
	{"True", []string{"benar", "ya", "iya"}},
	{"False", []string{"salah", "tidak", "bukan"}},
	{"None", []string{"kosong", "tidak_ada", "null"}},
	{"and", []string{"dan", "serta", "juga"}},
	{"or", []string{"atau", "ataupun"}},
	{"not", []string{"bukan", "tidak", "negate"}},

	// Exceptions
	{"try", []string{"coba", "percobaan"}},
	{"except", []string{"kecuali", "tangkap", "error"}},
	{"finally", []string{"akhirnya", "terakhir"}},
	{"raise", []string{"lempar", "angkat", "throw"}},

	// Classes and objects
	{"class", []string{"kelas", "class"}},
	{"object", []string{"objek"}},
	{"self", []string{"diri", "ini"}},
	{"super", []string{"super_class", "induk"}},

	// Imports
	{"import", []string{"impor", "muat", "gunakan"}},
	{"from", []string{"dari", "ambil_dari"}},
	{"as", []string{"sebagai", "alias", "dengan_nama"}},

	// Advanced
	{"lambda", []string{"lambda_func", "fungsi_anonim"}},
	{"yield", []string{"generator", "hasilkan"}},
	{"with", []string{"dengan", "gunakan_dengan"}},
	{"assert", []string{"tegas", "pastikan", "validasi"}},

	// Database
	{"sqlite3.connect", []string{"buka_database"}},
	{"execute", []string{"eksekusi_sql"}},
	{"fetchall", []string{"ambil_data"}},
	{"fetchone", []string{"ambil_satu"}},
	{"commit", []string{"commit_db"}},
	{"close", []string{"tutup_db"}},
}

// IndonesianGroups returns a copy of the built-in Indonesian synonym groups.
func IndonesianGroups() []Group {
	out := make([]Group, len(indonesianGroups))
	for i, g := range indonesianGroups {
		out[i] = Group{Target: g.Target, Sources: append([]string(nil), g.Sources...)}
	}
	return out
}

// Indonesian returns the built-in Indonesian table.
func Indonesian() *Table {
	return NewIndonesianBuilder().Build()
}

// NewIndonesianBuilder returns a Builder preloaded with the built-in
// Indonesian groups, ready for dictionary files to be layered on top.
func NewIndonesianBuilder() *Builder {
	return NewBuilder(language.Indonesian).AddGroups(indonesianGroups)
}
