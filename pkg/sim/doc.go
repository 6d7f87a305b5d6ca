// Package sim provides the link-level and propagation simulations served as
// tools by radiolab.
//
// The models are intentionally small: Gray-mapped QAM/PAM/PSK constellations,
// Monte-Carlo AWGN and flat Rayleigh links, maximum-ratio combining for
// multi-antenna receivers, and a free-space propagation grid for coverage
// maps. Random variates come from gonum distributions driven by a seedable
// math/rand/v2 source, so a Simulator built WithSeed is reproducible.
package sim
