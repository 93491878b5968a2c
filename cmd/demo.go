package cmd

const demoName = "demo.py"

// demoProgram is run by `pys` without arguments.
const demoProgram = `# Demo pys
cetak("=== DEMO PYS ===")

# Daftar
angka = daftar([1, 2, 3, 4, 5])
cetak("Daftar angka:", angka)
angka.tambah(6)
cetak("Setelah menambah 6:", angka)
cetak("Total:", jumlah(angka))
cetak("Maksimum:", maksimum(angka))
cetak("Rata-rata:", rata_rata(angka))

# Teks
teks = "Python itu mudah"
cetak("Teks asli:", teks)
cetak("Huruf besar:", teks.huruf_besar())
kata_kata = teks.pisah(" ")
cetak("Dipecah menjadi:", kata_kata)

# Kontrol alur
cetak("Angka genap dari 1-10:")
untuk i dalam rentang(1, 11):
    jika i % 2 == 0:
        cetak(i, "adalah genap")

# Kamus
data = kamus({"nama": "Alice", "umur": 25, "kota": "Jakarta"})
cetak("Data:", data)
untuk k, v dalam data.item():
    cetak(f"{k}: {v}")

cetak("=== SELESAI ===")
`

type demoSource struct{}

func (demoSource) ReadSource(id string) (string, error) { return demoProgram, nil }
