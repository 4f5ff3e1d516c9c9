// Package genetics provides the concrete motion-map collaborator: a
// two-locus family-matching model of female signaling and male screening.
//
// [Family] implements [dynamics.System]. Its Jacobian is exact, obtained by
// evaluating the matching arithmetic over forward-mode dual numbers rather
// than by finite differences or a symbolic engine.
//
// The four genotypes combine a male-expressed screening allele (G accepts
// females perceived as altruists, g the opposite) with a female-expressed
// signaling allele (A altruist, a selfish). Payoffs follow the usual
// social-dilemma ordering PiaA > PiAA > Piaa > PiAa: selfish females do best
// against altruist partners, altruists do worst against selfish partners.
package genetics
