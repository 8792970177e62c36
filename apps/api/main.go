package main

// TODO:
// - Profiling (Benchmarking) !! https://blog.golang.org/pprof
// - persist the store (it resets on restart)
func main() {
	startWithDig()
}
